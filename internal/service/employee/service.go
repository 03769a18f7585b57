package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	db             database.Transactor
	employeeRepo   employee.EmployeeRepository
	activityRepo   activity.ActivityRepository
	screenshotRepo activity.ScreenshotRepository
	clientRepo     client.ClientRepository
	projectRepo    project.ProjectRepository
	now            func() time.Time
}

func NewEmployeeService(
	db database.Transactor,
	employeeRepo employee.EmployeeRepository,
	activityRepo activity.ActivityRepository,
	screenshotRepo activity.ScreenshotRepository,
	clientRepo client.ClientRepository,
	projectRepo project.ProjectRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		db:             db,
		employeeRepo:   employeeRepo,
		activityRepo:   activityRepo,
		screenshotRepo: screenshotRepo,
		clientRepo:     clientRepo,
		projectRepo:    projectRepo,
		now:            time.Now,
	}
}

// canSee lets employees read their own record and managers read anyone's.
func canSee(caller user.Caller, employeeID string) error {
	if caller.EmployeeID == employeeID || caller.Role.IsManager() {
		return nil
	}
	return employee.ErrUnauthorized
}

// GetEmployee implements employee.EmployeeService. The response carries the day buckets.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := canSee(caller, id); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	days, err := s.employeeRepo.ListDays(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to list day buckets: %w", err)
	}

	resp := employee.ToResponse(emp)
	resp.Days = employee.ToDayResponses(days)
	return resp, nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	if _, err := user.CallerFromContext(ctx); err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.ToResponse(e))
	}
	return out, nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !caller.Role.IsManager() {
		return employee.EmployeeResponse{}, employee.ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	// only admins hand out the admin role
	if req.Role != nil && user.Role(*req.Role) == user.RoleAdmin && caller.Role != user.RoleAdmin {
		return employee.EmployeeResponse{}, user.ErrInsufficientPermissions
	}

	if req.FirstName != nil {
		trimmed := strings.TrimSpace(*req.FirstName)
		req.FirstName = &trimmed
	}
	if req.LastName != nil {
		trimmed := strings.TrimSpace(*req.LastName)
		req.LastName = &trimmed
	}

	if err := s.employeeRepo.Update(ctx, req.ID, req); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee updated", "id", req.ID, "by", caller.EmployeeID)
	return employee.ToResponse(updated), nil
}

// DeleteEmployee implements employee.EmployeeService. Activities and
// screenshots are deleted; client, project and membership references are cleared.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return err
	}
	if !caller.Role.IsManager() {
		return employee.ErrUnauthorized
	}
	if caller.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}

	var activities, screenshots int64
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.LockByID(ctx, id); err != nil {
			return err
		}

		var err error
		if screenshots, err = s.screenshotRepo.DeleteByEmployee(ctx, id); err != nil {
			return fmt.Errorf("failed to delete screenshots: %w", err)
		}
		if activities, err = s.activityRepo.DeleteByEmployee(ctx, id); err != nil {
			return fmt.Errorf("failed to delete activities: %w", err)
		}
		if err := s.clientRepo.ClearEmployee(ctx, id); err != nil {
			return fmt.Errorf("failed to clear client references: %w", err)
		}
		if err := s.projectRepo.RemoveEmployee(ctx, id); err != nil {
			return fmt.Errorf("failed to clear project references: %w", err)
		}
		if err := s.employeeRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Employee deleted",
		"id", id,
		"by", caller.EmployeeID,
		"activities", activities,
		"screenshots", screenshots,
	)
	return nil
}

// ListDays implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListDays(ctx context.Context, employeeID string) ([]employee.DayBucketResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := canSee(caller, employeeID); err != nil {
		return nil, err
	}

	days, err := s.employeeRepo.ListDays(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list day buckets: %w", err)
	}
	return employee.ToDayResponses(days), nil
}

// UpdateLastActive implements employee.EmployeeService for the caller.
func (s *EmployeeServiceImpl) UpdateLastActive(ctx context.Context, req employee.UpdateLastActiveRequest) error {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return err
	}

	lastActive := s.now()
	if req.LastActive != nil {
		if *req.LastActive < 0 {
			var errs validator.ValidationErrors
			errs.Add("last_active", "last_active must not be negative")
			return errs
		}
		lastActive = time.UnixMilli(*req.LastActive)
	}

	return s.employeeRepo.UpdateLastActive(ctx, caller.EmployeeID, lastActive)
}
