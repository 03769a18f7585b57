package activity

import (
	"context"
	"time"
)

type ActivityRepository interface {
	GetByID(ctx context.Context, id string) (Activity, error)
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Activity, error)
	Create(ctx context.Context, a Activity) (Activity, error)
	Update(ctx context.Context, a Activity) error
	// AdjustConsumeTime adds delta (ms) to the activity's consumed time
	AdjustConsumeTime(ctx context.Context, id string, delta int64) error
	Delete(ctx context.Context, id string) error
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
	ClearClient(ctx context.Context, clientID string) (int64, error)
	ClearProject(ctx context.Context, projectID string) (int64, error)
}

type ScreenshotRepository interface {
	GetByID(ctx context.Context, id string) (Screenshot, error)
	// ListByActivity returns screenshots ordered by capture time
	ListByActivity(ctx context.Context, activityID string) ([]Screenshot, error)
	Create(ctx context.Context, s Screenshot) (Screenshot, error)
	Delete(ctx context.Context, id string) error
	DeleteByActivity(ctx context.Context, activityID string) (int64, error)
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
	// Reassign moves the given screenshots to activityID
	Reassign(ctx context.Context, screenshotIDs []string, activityID string) error
	ClearClient(ctx context.Context, clientID string) (int64, error)
	ClearProject(ctx context.Context, projectID string) (int64, error)
}
