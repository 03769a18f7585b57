package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/activity"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type screenshotRepositoryImpl struct {
	db *database.DB
}

func NewScreenshotRepository(db *database.DB) activity.ScreenshotRepository {
	return &screenshotRepositoryImpl{db: db}
}

const screenshotColumns = `id, employee_id, client_id, project_id, activity_id, activity_at, taken_at,
	consume_time, performance, title, task, image, created_at`

func scanScreenshot(row pgx.Row) (activity.Screenshot, error) {
	var s activity.Screenshot
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.ClientID, &s.ProjectID, &s.ActivityID, &s.ActivityAt, &s.TakenAt,
		&s.ConsumeTime, &s.Performance, &s.Title, &s.Task, &s.Image, &s.CreatedAt,
	)
	return s, err
}

// GetByID implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) GetByID(ctx context.Context, id string) (activity.Screenshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + screenshotColumns + ` FROM screenshots WHERE id = $1`

	s, err := scanScreenshot(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity.Screenshot{}, activity.ErrScreenshotNotFound
		}
		return activity.Screenshot{}, fmt.Errorf("failed to get screenshot with id %s: %w", id, err)
	}
	return s, nil
}

// ListByActivity implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) ListByActivity(ctx context.Context, activityID string) ([]activity.Screenshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + screenshotColumns + `
		FROM screenshots
		WHERE activity_id = $1
		ORDER BY activity_at, id
	`

	rows, err := q.Query(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var screenshots []activity.Screenshot
	for rows.Next() {
		s, err := scanScreenshot(rows)
		if err != nil {
			return nil, err
		}
		screenshots = append(screenshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return screenshots, nil
}

// Create implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) Create(ctx context.Context, s activity.Screenshot) (activity.Screenshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO screenshots (
			employee_id, client_id, project_id, activity_id, activity_at, taken_at,
			consume_time, performance, title, task, image
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + screenshotColumns

	created, err := scanScreenshot(q.QueryRow(ctx, query,
		s.EmployeeID, s.ClientID, s.ProjectID, s.ActivityID, s.ActivityAt, s.TakenAt,
		s.ConsumeTime, s.Performance, s.Title, s.Task, s.Image,
	))
	if err != nil {
		return activity.Screenshot{}, fmt.Errorf("failed to create screenshot: %w", err)
	}
	return created, nil
}

// Delete implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM screenshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete screenshot with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrScreenshotNotFound
	}
	return nil
}

// DeleteByActivity implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) DeleteByActivity(ctx context.Context, activityID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db), `DELETE FROM screenshots WHERE activity_id = $1`, activityID)
}

// DeleteByEmployee implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db), `DELETE FROM screenshots WHERE employee_id = $1`, employeeID)
}

// Reassign implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) Reassign(ctx context.Context, screenshotIDs []string, activityID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE screenshots SET activity_id = $2 WHERE id::text = ANY($1::text[])`

	tag, err := q.Exec(ctx, query, screenshotIDs, activityID)
	if err != nil {
		return fmt.Errorf("failed to move screenshots to activity %s: %w", activityID, err)
	}
	if tag.RowsAffected() != int64(len(screenshotIDs)) {
		return fmt.Errorf("moved %d of %d screenshots: %w", tag.RowsAffected(), len(screenshotIDs), activity.ErrScreenshotNotFound)
	}
	return nil
}

// ClearClient implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) ClearClient(ctx context.Context, clientID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db), `UPDATE screenshots SET client_id = NULL WHERE client_id = $1`, clientID)
}

// ClearProject implements activity.ScreenshotRepository.
func (r *screenshotRepositoryImpl) ClearProject(ctx context.Context, projectID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db), `UPDATE screenshots SET project_id = NULL WHERE project_id = $1`, projectID)
}
