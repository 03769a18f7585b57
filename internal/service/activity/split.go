package activity

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/validator"
)

// splitAt cuts a into [start, t] and [t, end]. Both halves keep every
// attribute of a except id, times and consumed time, which becomes the half's span.
func splitAt(a activity.Activity, t int64) (activity.Activity, activity.Activity) {
	first := a
	first.ID = ""
	first.Screenshots = nil
	first.EndTime = t
	first.ConsumeTime = first.Span()

	second := first
	second.StartTime = t
	second.EndTime = a.EndTime
	second.ConsumeTime = second.Span()

	return first, second
}

// partitionScreenshots assigns screenshots captured at or before cut to
// the first half and the rest to the second.
func partitionScreenshots(shots []activity.Screenshot, cut int64) (first, second []activity.Screenshot) {
	for _, sh := range shots {
		if sh.ActivityAt <= cut {
			first = append(first, sh)
		} else {
			second = append(second, sh)
		}
	}
	return first, second
}

func screenshotIDs(shots []activity.Screenshot) []string {
	ids := make([]string, 0, len(shots))
	for _, sh := range shots {
		ids = append(ids, sh.ID)
	}
	return ids
}

func reparent(shots []activity.Screenshot, activityID string) []activity.Screenshot {
	out := make([]activity.Screenshot, len(shots))
	for i, sh := range shots {
		sh.ActivityID = activityID
		out[i] = sh
	}
	return out
}

// SplitActivity implements activity.ActivityService. The original activity
// is replaced by two contiguous ones in a single transaction; on any failure
// nothing changes.
func (s *ActivityServiceImpl) SplitActivity(ctx context.Context, req activity.SplitActivityRequest) (activity.SplitActivityResponse, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return activity.SplitActivityResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return activity.SplitActivityResponse{}, err
	}

	var first, second activity.Activity
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		original, err := s.activityRepo.GetByID(ctx, req.ActivityID)
		if err != nil {
			return dependencyError("load activity", err)
		}
		if err := authorize(caller, original.EmployeeID); err != nil {
			return err
		}
		if req.SplitTime <= original.StartTime || req.SplitTime >= original.EndTime {
			var errs validator.ValidationErrors
			errs.Add("split_time", "split_time must be strictly between start_time and end_time")
			return errs
		}

		shots, err := s.screenshotRepo.ListByActivity(ctx, original.ID)
		if err != nil {
			return dependencyError("list screenshots", err)
		}

		a, b := splitAt(original, req.SplitTime)
		if first, err = s.activityRepo.Create(ctx, a); err != nil {
			return dependencyError("create first half", err)
		}
		if second, err = s.activityRepo.Create(ctx, b); err != nil {
			return dependencyError("create second half", err)
		}

		toFirst, toSecond := partitionScreenshots(shots, first.EndTime)
		if len(toFirst) > 0 {
			if err := s.screenshotRepo.Reassign(ctx, screenshotIDs(toFirst), first.ID); err != nil {
				return dependencyError("reassign screenshots", err)
			}
		}
		if len(toSecond) > 0 {
			if err := s.screenshotRepo.Reassign(ctx, screenshotIDs(toSecond), second.ID); err != nil {
				return dependencyError("reassign screenshots", err)
			}
		}
		first.Screenshots = reparent(toFirst, first.ID)
		second.Screenshots = reparent(toSecond, second.ID)

		date := employee.FormatDayDateMillis(original.StartTime, s.loc)
		if err := s.dayBuckets.AttachActivities(ctx, original.EmployeeID, date, []string{first.ID, second.ID}, first.ConsumeTime+second.ConsumeTime); err != nil {
			return dependencyError("attach halves to day bucket", err)
		}
		if err := s.dayBuckets.DetachActivity(ctx, original.EmployeeID, original.ID, original.ConsumeTime); err != nil {
			return dependencyError("detach original from day bucket", err)
		}

		if err := s.activityRepo.Delete(ctx, original.ID); err != nil {
			return dependencyError("delete original", err)
		}
		return nil
	})
	if err != nil {
		return activity.SplitActivityResponse{}, err
	}

	slog.Info("Activity split",
		"original_id", req.ActivityID,
		"split_time", req.SplitTime,
		"first_id", first.ID,
		"second_id", second.ID,
	)
	return activity.SplitActivityResponse{
		First:  activity.ToActivityResponse(first),
		Second: activity.ToActivityResponse(second),
	}, nil
}
