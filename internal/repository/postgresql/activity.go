package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type activityRepositoryImpl struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) activity.ActivityRepository {
	return &activityRepositoryImpl{db: db}
}

const activityColumns = `id, employee_id, client_id, project_id, task, start_time, end_time, consume_time,
	activity_on, is_internal, performance, is_accepted, created_at, updated_at`

func scanActivity(row pgx.Row) (activity.Activity, error) {
	var a activity.Activity
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.ClientID, &a.ProjectID, &a.Task,
		&a.StartTime, &a.EndTime, &a.ConsumeTime, &a.ActivityOn,
		&a.IsInternal, &a.Performance, &a.IsAccepted, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// GetByID implements activity.ActivityRepository.
func (r *activityRepositoryImpl) GetByID(ctx context.Context, id string) (activity.Activity, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	a, err := scanActivity(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity.Activity{}, activity.ErrActivityNotFound
		}
		return activity.Activity{}, fmt.Errorf("failed to get activity with id %s: %w", id, err)
	}
	return a, nil
}

// ListByEmployee implements activity.ActivityRepository.
func (r *activityRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]activity.Activity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE employee_id = $1 AND activity_on BETWEEN $2 AND $3
		ORDER BY start_time, id
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return activities, nil
}

// Create implements activity.ActivityRepository.
func (r *activityRepositoryImpl) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO activities (
			employee_id, client_id, project_id, task, start_time, end_time, consume_time,
			activity_on, is_internal, performance, is_accepted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + activityColumns

	created, err := scanActivity(q.QueryRow(ctx, query,
		a.EmployeeID, a.ClientID, a.ProjectID, a.Task, a.StartTime, a.EndTime, a.ConsumeTime,
		a.ActivityOn, a.IsInternal, a.Performance, a.IsAccepted,
	))
	if err != nil {
		return activity.Activity{}, fmt.Errorf("failed to create activity: %w", err)
	}
	return created, nil
}

// Update implements activity.ActivityRepository.
func (r *activityRepositoryImpl) Update(ctx context.Context, a activity.Activity) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE activities
		SET client_id = $2, project_id = $3, task = $4, start_time = $5, end_time = $6,
			consume_time = $7, activity_on = $8, is_internal = $9, performance = $10,
			is_accepted = $11, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		a.ID, a.ClientID, a.ProjectID, a.Task, a.StartTime, a.EndTime,
		a.ConsumeTime, a.ActivityOn, a.IsInternal, a.Performance, a.IsAccepted,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity with id %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// AdjustConsumeTime implements activity.ActivityRepository.
func (r *activityRepositoryImpl) AdjustConsumeTime(ctx context.Context, id string, delta int64) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE activities SET consume_time = consume_time + $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust consumed time of activity %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// Delete implements activity.ActivityRepository.
func (r *activityRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

// DeleteByEmployee implements activity.ActivityRepository.
func (r *activityRepositoryImpl) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db), `DELETE FROM activities WHERE employee_id = $1`, employeeID)
}

// ClearClient implements activity.ActivityRepository.
func (r *activityRepositoryImpl) ClearClient(ctx context.Context, clientID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db),
		`UPDATE activities SET client_id = NULL, updated_at = NOW() WHERE client_id = $1`, clientID)
}

// ClearProject implements activity.ActivityRepository.
func (r *activityRepositoryImpl) ClearProject(ctx context.Context, projectID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db),
		`UPDATE activities SET project_id = NULL, updated_at = NOW() WHERE project_id = $1`, projectID)
}

func execCount(ctx context.Context, q database.Querier, query string, args ...interface{}) (int64, error) {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
