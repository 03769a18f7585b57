package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type ClientServiceImpl struct {
	db             database.Transactor
	clientRepo     client.ClientRepository
	projectRepo    project.ProjectRepository
	activityRepo   activity.ActivityRepository
	screenshotRepo activity.ScreenshotRepository
	employeeRepo   employee.EmployeeRepository
	aggregator     report.Aggregator
	now            func() time.Time
}

func NewClientService(
	db database.Transactor,
	clientRepo client.ClientRepository,
	projectRepo project.ProjectRepository,
	activityRepo activity.ActivityRepository,
	screenshotRepo activity.ScreenshotRepository,
	employeeRepo employee.EmployeeRepository,
	aggregator report.Aggregator,
) client.ClientService {
	return &ClientServiceImpl{
		db:             db,
		clientRepo:     clientRepo,
		projectRepo:    projectRepo,
		activityRepo:   activityRepo,
		screenshotRepo: screenshotRepo,
		employeeRepo:   employeeRepo,
		aggregator:     aggregator,
		now:            time.Now,
	}
}

func authorize(ctx context.Context, action user.Action) (user.Caller, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return user.Caller{}, err
	}
	if !user.Can(caller.Role, action, user.ResourceClient) {
		return user.Caller{}, user.ErrInsufficientPermissions
	}
	return caller, nil
}

func (s *ClientServiceImpl) checkManager(ctx context.Context, managerID *string) error {
	if managerID == nil || *managerID == "" {
		return nil
	}
	if _, err := s.employeeRepo.GetByID(ctx, *managerID); err != nil {
		return fmt.Errorf("manager: %w", err)
	}
	return nil
}

func (s *ClientServiceImpl) withProjects(ctx context.Context, c client.Client) (client.ClientResponse, error) {
	projects, err := s.projectRepo.ListByClient(ctx, c.ID)
	if err != nil {
		return client.ClientResponse{}, fmt.Errorf("failed to list client projects: %w", err)
	}
	return client.ToResponse(c, projects), nil
}

// CreateClient implements client.ClientService.
func (s *ClientServiceImpl) CreateClient(ctx context.Context, req client.CreateClientRequest) (client.ClientResponse, error) {
	caller, err := authorize(ctx, user.ActionCreate)
	if err != nil {
		return client.ClientResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return client.ClientResponse{}, err
	}

	exists, err := s.clientRepo.ExistsByName(ctx, req.Name, nil)
	if err != nil {
		return client.ClientResponse{}, fmt.Errorf("failed to check client name: %w", err)
	}
	if exists {
		return client.ClientResponse{}, client.ErrClientNameExists
	}
	if err := s.checkManager(ctx, req.ManagerID); err != nil {
		return client.ClientResponse{}, err
	}

	createdBy := caller.EmployeeID
	created, err := s.clientRepo.Create(ctx, client.Client{
		Name:      req.Name,
		CreatedBy: &createdBy,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		return client.ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	slog.Info("Client created", "id", created.ID, "name", created.Name, "by", caller.EmployeeID)
	return client.ToResponse(created, nil), nil
}

// ListClients implements client.ClientService.
func (s *ClientServiceImpl) ListClients(ctx context.Context) ([]client.ClientResponse, error) {
	if _, err := authorize(ctx, user.ActionRead); err != nil {
		return nil, err
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	out := make([]client.ClientResponse, 0, len(clients))
	for _, c := range clients {
		resp, err := s.withProjects(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// GetClient implements client.ClientService.
func (s *ClientServiceImpl) GetClient(ctx context.Context, id string) (client.ClientResponse, error) {
	if _, err := authorize(ctx, user.ActionRead); err != nil {
		return client.ClientResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return client.ClientResponse{}, client.ErrClientNotFound
	}

	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return client.ClientResponse{}, err
	}
	return s.withProjects(ctx, c)
}

// UpdateClient implements client.ClientService. An empty manager_id clears the manager.
func (s *ClientServiceImpl) UpdateClient(ctx context.Context, req client.UpdateClientRequest) (client.ClientResponse, error) {
	caller, err := authorize(ctx, user.ActionUpdate)
	if err != nil {
		return client.ClientResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return client.ClientResponse{}, err
	}

	c, err := s.clientRepo.GetByID(ctx, req.ID)
	if err != nil {
		return client.ClientResponse{}, err
	}

	if req.Name != nil && *req.Name != c.Name {
		exists, err := s.clientRepo.ExistsByName(ctx, *req.Name, &c.ID)
		if err != nil {
			return client.ClientResponse{}, fmt.Errorf("failed to check client name: %w", err)
		}
		if exists {
			return client.ClientResponse{}, client.ErrClientNameExists
		}
		c.Name = *req.Name
	}
	if req.ManagerID != nil {
		if err := s.checkManager(ctx, req.ManagerID); err != nil {
			return client.ClientResponse{}, err
		}
		if *req.ManagerID == "" {
			c.ManagerID = nil
		} else {
			managerID := *req.ManagerID
			c.ManagerID = &managerID
		}
	}

	if err := s.clientRepo.Update(ctx, c); err != nil {
		return client.ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}

	slog.Info("Client updated", "id", c.ID, "by", caller.EmployeeID)
	return s.withProjects(ctx, c)
}

// DeleteClient implements client.ClientService.
func (s *ClientServiceImpl) DeleteClient(ctx context.Context, id string) error {
	caller, err := authorize(ctx, user.ActionDelete)
	if err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return client.ErrClientNotFound
	}

	var projects, activities, screenshots int64
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
			return err
		}

		var err error
		if projects, err = s.projectRepo.ClearClient(ctx, id); err != nil {
			return fmt.Errorf("failed to detach projects: %w", err)
		}
		if activities, err = s.activityRepo.ClearClient(ctx, id); err != nil {
			return fmt.Errorf("failed to detach activities: %w", err)
		}
		if screenshots, err = s.screenshotRepo.ClearClient(ctx, id); err != nil {
			return fmt.Errorf("failed to detach screenshots: %w", err)
		}
		if err := s.clientRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Client deleted",
		"id", id,
		"by", caller.EmployeeID,
		"projects", projects,
		"activities", activities,
		"screenshots", screenshots,
	)
	return nil
}

// GetClientTime implements client.ClientService over the client's whole history.
func (s *ClientServiceImpl) GetClientTime(ctx context.Context, id string) (client.TimeSummaryResponse, error) {
	if _, err := authorize(ctx, user.ActionRead); err != nil {
		return client.TimeSummaryResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return client.TimeSummaryResponse{}, client.ErrClientNotFound
	}

	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return client.TimeSummaryResponse{}, err
	}

	summary, err := s.aggregator.Aggregate(ctx, report.ActivityFilter{
		ClientIDs: []string{c.ID},
		From:      time.UnixMilli(0),
		To:        s.now(),
	}, client.TimeViews)
	if err != nil {
		return client.TimeSummaryResponse{}, err
	}
	return client.NewTimeSummary(c.ID, c.Name, summary), nil
}
