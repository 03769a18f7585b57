package project

import (
	"context"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
)

type ProjectService interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error)
	ListProjects(ctx context.Context) ([]ProjectResponse, error)
	GetProject(ctx context.Context, id string) (ProjectResponse, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) (ProjectResponse, error)
	DeleteProject(ctx context.Context, id string) error

	AddMember(ctx context.Context, req MemberRequest) (ProjectResponse, error)
	RemoveMember(ctx context.Context, req MemberRequest) (ProjectResponse, error)

	GetProjectTime(ctx context.Context, id string) (client.TimeSummaryResponse, error)
}
