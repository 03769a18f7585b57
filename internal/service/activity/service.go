package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/service/file"
)

type ActivityServiceImpl struct {
	db             database.Transactor
	activityRepo   activity.ActivityRepository
	screenshotRepo activity.ScreenshotRepository
	dayBuckets     employee.DayBucketUpdater
	fileService    file.FileService
	loc            *time.Location
	now            func() time.Time
}

func NewActivityService(
	db database.Transactor,
	activityRepo activity.ActivityRepository,
	screenshotRepo activity.ScreenshotRepository,
	dayBuckets employee.DayBucketUpdater,
	fileService file.FileService,
	loc *time.Location,
) activity.ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityServiceImpl{
		db:             db,
		activityRepo:   activityRepo,
		screenshotRepo: screenshotRepo,
		dayBuckets:     dayBuckets,
		fileService:    fileService,
		loc:            loc,
		now:            time.Now,
	}
}

// authorize lets employees touch their own activities and managers touch anyone's.
func authorize(caller user.Caller, employeeID string) error {
	if caller.EmployeeID == employeeID || caller.Role.IsManager() {
		return nil
	}
	return activity.ErrNotOwner
}

// CreateActivity implements activity.ActivityService.
func (s *ActivityServiceImpl) CreateActivity(ctx context.Context, req activity.CreateActivityRequest) (activity.ActivityResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return activity.ActivityResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return activity.ActivityResponse{}, err
	}

	employeeID := caller.EmployeeID
	if req.EmployeeID != nil {
		employeeID = *req.EmployeeID
	}
	if err := authorize(caller, employeeID); err != nil {
		return activity.ActivityResponse{}, err
	}

	activityOn := s.now().In(s.loc)
	if req.ActivityOn != nil {
		activityOn, _ = validator.ParseFlexibleDate(*req.ActivityOn, s.loc)
	}

	consumed := req.EndTime - req.StartTime
	if req.ConsumeTime != nil {
		consumed = *req.ConsumeTime
	}

	newActivity := activity.Activity{
		EmployeeID:  employeeID,
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		Task:        strings.TrimSpace(req.Task),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ConsumeTime: consumed,
		ActivityOn:  activityOn,
		IsInternal:  req.IsInternal,
		Performance: req.Performance,
	}

	var created activity.Activity
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.activityRepo.Create(ctx, newActivity)
		if err != nil {
			return fmt.Errorf("failed to create activity: %w", err)
		}

		date := employee.FormatDayDate(activityOn, s.loc)
		if err := s.dayBuckets.AttachActivities(ctx, employeeID, date, []string{created.ID}, consumed); err != nil {
			return fmt.Errorf("failed to register activity in day bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return activity.ActivityResponse{}, err
	}

	slog.Info("Activity created", "id", created.ID, "employee_id", employeeID, "consume_time", consumed)
	return activity.ToActivityResponse(created), nil
}

// GetActivities implements activity.ActivityService.
func (s *ActivityServiceImpl) GetActivities(ctx context.Context, req activity.GetActivitiesRequest) ([]activity.ActivityResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employeeID := caller.EmployeeID
	if req.EmployeeID != nil {
		employeeID = *req.EmployeeID
	}
	if err := authorize(caller, employeeID); err != nil {
		return nil, err
	}

	from := time.Unix(0, 0).In(s.loc)
	to := s.now().In(s.loc)
	if req.From != nil {
		from, _ = validator.ParseFlexibleDate(*req.From, s.loc)
	}
	if req.To != nil {
		to, _ = validator.ParseFlexibleDate(*req.To, s.loc)
		if !strings.Contains(*req.To, "T") {
			to = to.Add(24*time.Hour - time.Millisecond)
		}
	}
	if to.Before(from) {
		var errs validator.ValidationErrors
		errs.Add("to", "to must not be before from")
		return nil, errs
	}

	activities, err := s.activityRepo.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	out := make([]activity.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, activity.ToActivityResponse(a))
	}
	return out, nil
}

// UpdateActivity implements activity.ActivityService.
func (s *ActivityServiceImpl) UpdateActivity(ctx context.Context, req activity.UpdateActivityRequest) (activity.ActivityResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return activity.ActivityResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return activity.ActivityResponse{}, err
	}

	var updated activity.Activity
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.activityRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := authorize(caller, current.EmployeeID); err != nil {
			return err
		}

		updated = current
		if req.Task != nil {
			updated.Task = strings.TrimSpace(*req.Task)
		}
		if req.ClientID != nil {
			updated.ClientID = emptyToNil(*req.ClientID)
		}
		if req.ProjectID != nil {
			updated.ProjectID = emptyToNil(*req.ProjectID)
		}
		if req.IsInternal != nil {
			updated.IsInternal = *req.IsInternal
		}
		if req.IsAccepted != nil {
			updated.IsAccepted = *req.IsAccepted
		}
		if req.Performance != nil {
			updated.Performance = *req.Performance
		}
		if req.StartTime != nil {
			updated.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			updated.EndTime = *req.EndTime
		}

		if updated.EndTime < updated.StartTime {
			var errs validator.ValidationErrors
			errs.Add("end_time", "end_time must not be before start_time")
			return errs
		}

		timesChanged := updated.StartTime != current.StartTime || updated.EndTime != current.EndTime
		if timesChanged {
			updated.ConsumeTime = updated.Span()
		}

		if err := s.activityRepo.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}

		if timesChanged {
			if err := s.dayBuckets.DetachActivity(ctx, current.EmployeeID, current.ID, current.ConsumeTime); err != nil {
				return fmt.Errorf("failed to update day bucket: %w", err)
			}
			date := employee.FormatDayDate(current.ActivityOn, s.loc)
			if err := s.dayBuckets.AttachActivities(ctx, current.EmployeeID, date, []string{current.ID}, updated.ConsumeTime); err != nil {
				return fmt.Errorf("failed to update day bucket: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return activity.ActivityResponse{}, err
	}

	return activity.ToActivityResponse(updated), nil
}

// DeleteActivity implements activity.ActivityService.
func (s *ActivityServiceImpl) DeleteActivity(ctx context.Context, id string) error {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return activity.ErrActivityNotFound
	}

	var images []string
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.activityRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := authorize(caller, current.EmployeeID); err != nil {
			return err
		}

		shots, err := s.screenshotRepo.ListByActivity(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list screenshots: %w", err)
		}
		images = imageKeys(shots)

		if _, err := s.screenshotRepo.DeleteByActivity(ctx, id); err != nil {
			return fmt.Errorf("failed to delete screenshots: %w", err)
		}
		if err := s.dayBuckets.DetachActivity(ctx, current.EmployeeID, id, current.ConsumeTime); err != nil {
			return fmt.Errorf("failed to update day bucket: %w", err)
		}
		if err := s.activityRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deleteImages(ctx, images)
	slog.Info("Activity deleted", "id", id, "screenshots", len(images))
	return nil
}

// CreateScreenshot implements activity.ActivityService.
func (s *ActivityServiceImpl) CreateScreenshot(ctx context.Context, req activity.CreateScreenshotRequest) (activity.ScreenshotResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return activity.ScreenshotResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return activity.ScreenshotResponse{}, err
	}

	owner, err := s.activityRepo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return activity.ScreenshotResponse{}, err
	}
	if err := authorize(caller, owner.EmployeeID); err != nil {
		return activity.ScreenshotResponse{}, err
	}

	shot := activity.Screenshot{
		EmployeeID:  owner.EmployeeID,
		ClientID:    owner.ClientID,
		ProjectID:   owner.ProjectID,
		ActivityID:  owner.ID,
		ActivityAt:  req.ActivityAt,
		ConsumeTime: req.ConsumeTime,
		Performance: req.Performance,
		Title:       strings.TrimSpace(req.Title),
		Task:        strings.TrimSpace(req.Task),
	}
	if shot.Title == "" {
		shot.Title = activity.DefaultScreenshotTitle
	}
	if shot.Task == "" {
		shot.Task = owner.Task
	}
	if req.TakenAt != nil {
		t, _ := validator.IsValidDateTime(*req.TakenAt)
		shot.TakenAt = &t
	}

	if req.Image != nil {
		key, err := s.fileService.UploadScreenshot(ctx, owner.EmployeeID, time.UnixMilli(req.ActivityAt), req.Image, req.ImageFilename)
		if err != nil {
			return activity.ScreenshotResponse{}, fmt.Errorf("%w: %v", activity.ErrStorageUnavailable, err)
		}
		shot.Image = &key
	}

	created, err := s.screenshotRepo.Create(ctx, shot)
	if err != nil {
		if shot.Image != nil {
			s.deleteImages(ctx, []string{*shot.Image})
		}
		return activity.ScreenshotResponse{}, fmt.Errorf("failed to create screenshot: %w", err)
	}

	return activity.ToScreenshotResponse(created), nil
}

// DeleteScreenshots implements activity.ActivityService. Each removed
// screenshot's consumed time is taken off its activity.
func (s *ActivityServiceImpl) DeleteScreenshots(ctx context.Context, req activity.DeleteScreenshotsRequest) error {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var images []string
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, item := range req.Items {
			shot, err := s.screenshotRepo.GetByID(ctx, item.ScreenshotID)
			if err != nil {
				return err
			}
			if shot.ActivityID != item.ActivityID {
				return fmt.Errorf("%w: %s is not part of activity %s", activity.ErrScreenshotNotFound, item.ScreenshotID, item.ActivityID)
			}
			if err := authorize(caller, shot.EmployeeID); err != nil {
				return err
			}

			if err := s.screenshotRepo.Delete(ctx, shot.ID); err != nil {
				return fmt.Errorf("failed to delete screenshot: %w", err)
			}
			if err := s.activityRepo.AdjustConsumeTime(ctx, shot.ActivityID, -shot.ConsumeTime); err != nil {
				return fmt.Errorf("failed to adjust activity time: %w", err)
			}
			if shot.Image != nil {
				images = append(images, *shot.Image)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deleteImages(ctx, images)
	slog.Info("Screenshots deleted", "count", len(req.Items), "by", caller.EmployeeID)
	return nil
}

// deleteImages removes stored screenshot images. Failures are logged only:
// the rows are already gone.
func (s *ActivityServiceImpl) deleteImages(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.fileService.DeleteFile(context.WithoutCancel(ctx), key); err != nil {
			slog.Warn("Failed to delete screenshot image", "key", key, "error", err)
		}
	}
}

func imageKeys(shots []activity.Screenshot) []string {
	var keys []string
	for _, sh := range shots {
		if sh.Image != nil {
			keys = append(keys, *sh.Image)
		}
	}
	return keys
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// dependencyError marks a failed store call as a dependency failure while
// keeping domain sentinels and validation errors as they are.
func dependencyError(op string, err error) error {
	var verrs validator.ValidationErrors
	if errors.Is(err, activity.ErrActivityNotFound) ||
		errors.Is(err, activity.ErrNotOwner) ||
		errors.Is(err, activity.ErrStorageUnavailable) ||
		errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.As(err, &verrs) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", activity.ErrStorageUnavailable, op, err)
}
