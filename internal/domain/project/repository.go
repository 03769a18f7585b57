package project

import (
	"context"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (Project, error)
	List(ctx context.Context) ([]Project, error)
	ListByClient(ctx context.Context, clientID string) ([]client.ProjectRef, error)
	ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error)
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
	Create(ctx context.Context, p Project) (Project, error)
	Update(ctx context.Context, p Project) error
	Delete(ctx context.Context, id string) error

	// ClearClient nulls client_id on every project of clientID
	ClearClient(ctx context.Context, clientID string) (int64, error)

	AddMember(ctx context.Context, projectID, employeeID string) error
	RemoveMember(ctx context.Context, projectID, employeeID string) error
	// RemoveEmployee drops memberships and nulls leader/created_by references to employeeID
	RemoveEmployee(ctx context.Context, employeeID string) error
}
