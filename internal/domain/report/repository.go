package report

import (
	"context"
	"time"
)

// DefinitionRepository defines the interface for report definition access
type DefinitionRepository interface {
	Create(ctx context.Context, d Definition) (Definition, error)
	GetByID(ctx context.Context, id string) (Definition, error)
	GetByURL(ctx context.Context, url string) (Definition, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Definition, error)
	// ListScheduled returns definitions with schedule = true and a cron string
	ListScheduled(ctx context.Context) ([]Definition, error)
	MarkRun(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// ListTransientBefore returns scheduler leftovers created before t
	ListTransientBefore(ctx context.Context, t time.Time) ([]Definition, error)
}

// ActivityReader loads the engine's input rows
type ActivityReader interface {
	ListRecords(ctx context.Context, filter ActivityFilter) ([]ActivityRecord, error)
}
