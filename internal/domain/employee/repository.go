package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
	// MissingIDs returns the ids that do not exist
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) error
	UpdateLastActive(ctx context.Context, id string, lastActive time.Time) error
	Delete(ctx context.Context, id string) error

	// LockByID takes a row lock on the employee for the current transaction
	LockByID(ctx context.Context, id string) error
	ListDays(ctx context.Context, employeeID string) ([]DayBucket, error)
	UpsertDay(ctx context.Context, employeeID string, day DayBucket) error
}
