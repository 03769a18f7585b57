package employee

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
)

// DayBucketService persists day-bucket changes with a read-modify-write
// under a row lock on the employee.
type DayBucketService struct {
	db           database.Transactor
	employeeRepo employee.EmployeeRepository
}

func NewDayBucketService(db database.Transactor, employeeRepo employee.EmployeeRepository) *DayBucketService {
	return &DayBucketService{db: db, employeeRepo: employeeRepo}
}

var _ employee.DayBucketUpdater = (*DayBucketService)(nil)

// AttachActivities implements employee.DayBucketUpdater.
func (s *DayBucketService) AttachActivities(ctx context.Context, employeeID, date string, activityIDs []string, consumed int64) error {
	return s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		days, err := s.lockedDays(ctx, employeeID)
		if err != nil {
			return err
		}

		days, i := employee.AttachActivity(days, date, activityIDs, consumed)
		if err := s.employeeRepo.UpsertDay(ctx, employeeID, days[i]); err != nil {
			return fmt.Errorf("failed to save day bucket %s: %w", date, err)
		}
		return nil
	})
}

// DetachActivity implements employee.DayBucketUpdater.
func (s *DayBucketService) DetachActivity(ctx context.Context, employeeID, activityID string, consumed int64) error {
	return s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		days, err := s.lockedDays(ctx, employeeID)
		if err != nil {
			return err
		}

		for _, i := range employee.DetachActivity(days, activityID, consumed) {
			if err := s.employeeRepo.UpsertDay(ctx, employeeID, days[i]); err != nil {
				return fmt.Errorf("failed to save day bucket %s: %w", days[i].Date, err)
			}
		}
		return nil
	})
}

func (s *DayBucketService) lockedDays(ctx context.Context, employeeID string) ([]employee.DayBucket, error) {
	if err := s.employeeRepo.LockByID(ctx, employeeID); err != nil {
		return nil, err
	}
	days, err := s.employeeRepo.ListDays(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load day buckets: %w", err)
	}
	return days, nil
}
