package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type ProjectServiceImpl struct {
	db             database.Transactor
	projectRepo    project.ProjectRepository
	clientRepo     client.ClientRepository
	employeeRepo   employee.EmployeeRepository
	activityRepo   activity.ActivityRepository
	screenshotRepo activity.ScreenshotRepository
	aggregator     report.Aggregator
	now            func() time.Time
}

func NewProjectService(
	db database.Transactor,
	projectRepo project.ProjectRepository,
	clientRepo client.ClientRepository,
	employeeRepo employee.EmployeeRepository,
	activityRepo activity.ActivityRepository,
	screenshotRepo activity.ScreenshotRepository,
	aggregator report.Aggregator,
) project.ProjectService {
	return &ProjectServiceImpl{
		db:             db,
		projectRepo:    projectRepo,
		clientRepo:     clientRepo,
		employeeRepo:   employeeRepo,
		activityRepo:   activityRepo,
		screenshotRepo: screenshotRepo,
		aggregator:     aggregator,
		now:            time.Now,
	}
}

func authorize(ctx context.Context, action user.Action, resource user.Resource) (user.Caller, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return user.Caller{}, err
	}
	if !user.Can(caller.Role, action, resource) {
		return user.Caller{}, user.ErrInsufficientPermissions
	}
	return caller, nil
}

// canManage reports whether caller may edit p. Project leaders only edit the projects they lead.
func canManage(caller user.Caller, p project.Project) error {
	if caller.Role == user.RoleProjectLeader && (p.LeaderID == nil || *p.LeaderID != caller.EmployeeID) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

func (s *ProjectServiceImpl) checkName(ctx context.Context, name string, excludeID *string) error {
	exists, err := s.projectRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if exists {
		return project.ErrProjectNameExists
	}
	return nil
}

func (s *ProjectServiceImpl) checkRefs(ctx context.Context, clientID, leaderID *string) error {
	if clientID != nil && *clientID != "" {
		if _, err := s.clientRepo.GetByID(ctx, *clientID); err != nil {
			return err
		}
	}
	if leaderID != nil && *leaderID != "" {
		if _, err := s.employeeRepo.GetByID(ctx, *leaderID); err != nil {
			return fmt.Errorf("project leader: %w", err)
		}
	}
	return nil
}

func (s *ProjectServiceImpl) load(ctx context.Context, id string) (project.Project, error) {
	if !validator.IsValidUUID(id) {
		return project.Project{}, project.ErrProjectNotFound
	}
	return s.projectRepo.GetByID(ctx, id)
}

// CreateProject implements project.ProjectService. The creator becomes the first member.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	caller, err := authorize(ctx, user.ActionCreate, user.ResourceProject)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}
	if err := s.checkName(ctx, req.Name, nil); err != nil {
		return project.ProjectResponse{}, err
	}
	if err := s.checkRefs(ctx, req.ClientID, req.LeaderID); err != nil {
		return project.ProjectResponse{}, err
	}

	createdBy := caller.EmployeeID
	p := project.Project{
		Name:      req.Name,
		ClientID:  req.ClientID,
		LeaderID:  req.LeaderID,
		CreatedBy: &createdBy,
		Budget:    req.Budget.ApplyBudget(project.Budget{TimePeriod: project.BudgetTotal, Money: decimal.Zero}),
	}

	var created project.Project
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if created, err = s.projectRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		if err := s.projectRepo.AddMember(ctx, created.ID, caller.EmployeeID); err != nil {
			return fmt.Errorf("failed to add creator as member: %w", err)
		}
		created.MemberIDs = []string{caller.EmployeeID}
		return nil
	})
	if err != nil {
		return project.ProjectResponse{}, err
	}

	slog.Info("Project created", "id", created.ID, "name", created.Name, "by", caller.EmployeeID)
	return project.ToResponse(created), nil
}

// ListProjects implements project.ProjectService.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context) ([]project.ProjectResponse, error) {
	if _, err := authorize(ctx, user.ActionRead, user.ResourceProject); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]project.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, project.ToResponse(p))
	}
	return out, nil
}

// GetProject implements project.ProjectService.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, id string) (project.ProjectResponse, error) {
	if _, err := authorize(ctx, user.ActionRead, user.ResourceProject); err != nil {
		return project.ProjectResponse{}, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	return project.ToResponse(p), nil
}

// UpdateProject implements project.ProjectService. Empty client_id or
// project_leader clears the reference.
func (s *ProjectServiceImpl) UpdateProject(ctx context.Context, req project.UpdateProjectRequest) (project.ProjectResponse, error) {
	caller, err := authorize(ctx, user.ActionUpdate, user.ResourceProject)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	p, err := s.load(ctx, req.ID)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if err := canManage(caller, p); err != nil {
		return project.ProjectResponse{}, err
	}

	if req.Name != nil && *req.Name != p.Name {
		if err := s.checkName(ctx, *req.Name, &p.ID); err != nil {
			return project.ProjectResponse{}, err
		}
		p.Name = *req.Name
	}
	if err := s.checkRefs(ctx, req.ClientID, req.LeaderID); err != nil {
		return project.ProjectResponse{}, err
	}
	if req.ClientID != nil {
		p.ClientID = emptyToNil(*req.ClientID)
	}
	if req.LeaderID != nil {
		p.LeaderID = emptyToNil(*req.LeaderID)
	}
	p.Budget = req.Budget.ApplyBudget(p.Budget)

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return project.ProjectResponse{}, fmt.Errorf("failed to update project: %w", err)
	}

	slog.Info("Project updated", "id", p.ID, "by", caller.EmployeeID)
	return project.ToResponse(p), nil
}

// DeleteProject implements project.ProjectService. Activities and
// screenshots keep existing without a project.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id string) error {
	caller, err := authorize(ctx, user.ActionDelete, user.ResourceProject)
	if err != nil {
		return err
	}

	var activities, screenshots int64
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}

		var err error
		if activities, err = s.activityRepo.ClearProject(ctx, id); err != nil {
			return fmt.Errorf("failed to detach activities: %w", err)
		}
		if screenshots, err = s.screenshotRepo.ClearProject(ctx, id); err != nil {
			return fmt.Errorf("failed to detach screenshots: %w", err)
		}
		if err := s.projectRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Project deleted", "id", id, "by", caller.EmployeeID, "activities", activities, "screenshots", screenshots)
	return nil
}

// AddMember implements project.ProjectService.
func (s *ProjectServiceImpl) AddMember(ctx context.Context, req project.MemberRequest) (project.ProjectResponse, error) {
	caller, err := authorize(ctx, user.ActionCreate, user.ResourceMembers)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	p, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if p.HasMember(req.EmployeeID) {
		return project.ProjectResponse{}, project.ErrMemberExists
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return project.ProjectResponse{}, err
	}

	if err := s.projectRepo.AddMember(ctx, p.ID, req.EmployeeID); err != nil {
		return project.ProjectResponse{}, fmt.Errorf("failed to add member: %w", err)
	}
	p.MemberIDs = append(p.MemberIDs, req.EmployeeID)

	slog.Info("Project member added", "project_id", p.ID, "employee_id", req.EmployeeID, "by", caller.EmployeeID)
	return project.ToResponse(p), nil
}

// RemoveMember implements project.ProjectService. Removing the project
// leader also clears the leader.
func (s *ProjectServiceImpl) RemoveMember(ctx context.Context, req project.MemberRequest) (project.ProjectResponse, error) {
	caller, err := authorize(ctx, user.ActionDelete, user.ResourceMembers)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	var p project.Project
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if p, err = s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
			return err
		}
		if !p.HasMember(req.EmployeeID) {
			return project.ErrMemberNotFound
		}

		if err := s.projectRepo.RemoveMember(ctx, p.ID, req.EmployeeID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if p.LeaderID != nil && *p.LeaderID == req.EmployeeID {
			p.LeaderID = nil
			if err := s.projectRepo.Update(ctx, p); err != nil {
				return fmt.Errorf("failed to clear project leader: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return project.ProjectResponse{}, err
	}

	members := make([]string, 0, len(p.MemberIDs))
	for _, id := range p.MemberIDs {
		if id != req.EmployeeID {
			members = append(members, id)
		}
	}
	p.MemberIDs = members

	slog.Info("Project member removed", "project_id", p.ID, "employee_id", req.EmployeeID, "by", caller.EmployeeID)
	return project.ToResponse(p), nil
}

// GetProjectTime implements project.ProjectService over the project's whole history.
func (s *ProjectServiceImpl) GetProjectTime(ctx context.Context, id string) (client.TimeSummaryResponse, error) {
	if _, err := authorize(ctx, user.ActionRead, user.ResourceProject); err != nil {
		return client.TimeSummaryResponse{}, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return client.TimeSummaryResponse{}, err
	}

	summary, err := s.aggregator.Aggregate(ctx, report.ActivityFilter{
		ProjectIDs: []string{p.ID},
		From:       time.UnixMilli(0),
		To:         s.now(),
	}, client.TimeViews)
	if err != nil {
		return client.TimeSummaryResponse{}, err
	}
	return client.NewTimeSummary(p.ID, p.Name, summary), nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
