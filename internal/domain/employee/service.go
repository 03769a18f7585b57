package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	// UpdateEmployee edits names, pay rate and role (manager+ only)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee removes the employee, their activities and screenshots,
	// and clears every reference to them (manager+ only)
	DeleteEmployee(ctx context.Context, id string) error

	ListDays(ctx context.Context, employeeID string) ([]DayBucketResponse, error)
	UpdateLastActive(ctx context.Context, req UpdateLastActiveRequest) error
}

// DayBucketUpdater keeps the per-employee calendar in step with activities.
// Both methods lock the employee row and must run inside a transaction when
// combined with other writes.
type DayBucketUpdater interface {
	AttachActivities(ctx context.Context, employeeID, date string, activityIDs []string, consumed int64) error
	DetachActivity(ctx context.Context, employeeID, activityID string, consumed int64) error
}
