package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type definitionRepositoryImpl struct {
	db *database.DB
}

func NewDefinitionRepository(db *database.DB) report.DefinitionRepository {
	return &definitionRepositoryImpl{db: db}
}

const definitionColumns = `id, owner_id, name, options, schedule, cron_string, schedule_type, scheduled_mail,
	share, url, file_name, transient, include_ss, include_al, include_pr, include_apps,
	last_run_at, created_at, updated_at`

func scanDefinition(row pgx.Row) (report.Definition, error) {
	var (
		d            report.Definition
		options      []byte
		scheduleType []byte
	)
	err := row.Scan(
		&d.ID, &d.OwnerID, &d.Name, &options, &d.Schedule, &d.CronString, &scheduleType, &d.ScheduledMail,
		&d.Share, &d.URL, &d.FileName, &d.Transient,
		&d.IncludeScreenshots, &d.IncludeActivityLevel, &d.IncludePayRate, &d.IncludeApps,
		&d.LastRunAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return report.Definition{}, err
	}

	if err := json.Unmarshal(options, &d.Options); err != nil {
		return report.Definition{}, fmt.Errorf("failed to decode options of report %s: %w", d.ID, err)
	}
	if len(scheduleType) > 0 {
		var st report.ScheduleType
		if err := json.Unmarshal(scheduleType, &st); err != nil {
			return report.Definition{}, fmt.Errorf("failed to decode schedule type of report %s: %w", d.ID, err)
		}
		d.ScheduleType = &st
	}
	return d, nil
}

func (r *definitionRepositoryImpl) queryDefinitions(ctx context.Context, query string, args ...interface{}) ([]report.Definition, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []report.Definition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return defs, nil
}

func (r *definitionRepositoryImpl) getOne(ctx context.Context, where string, arg string) (report.Definition, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDefinition(q.QueryRow(ctx, `SELECT `+definitionColumns+` FROM reports WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.Definition{}, report.ErrReportNotFound
		}
		return report.Definition{}, fmt.Errorf("failed to get report: %w", err)
	}
	return d, nil
}

// Create implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) Create(ctx context.Context, d report.Definition) (report.Definition, error) {
	q := GetQuerier(ctx, r.db)

	options, err := json.Marshal(d.Options)
	if err != nil {
		return report.Definition{}, fmt.Errorf("failed to encode options: %w", err)
	}
	var scheduleType []byte
	if d.ScheduleType != nil {
		if scheduleType, err = json.Marshal(d.ScheduleType); err != nil {
			return report.Definition{}, fmt.Errorf("failed to encode schedule type: %w", err)
		}
	}

	query := `
		INSERT INTO reports (
			owner_id, name, options, schedule, cron_string, schedule_type, scheduled_mail,
			share, url, file_name, transient, include_ss, include_al, include_pr, include_apps
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + definitionColumns

	created, err := scanDefinition(q.QueryRow(ctx, query,
		d.OwnerID, d.Name, options, d.Schedule, d.CronString, scheduleType, d.ScheduledMail,
		d.Share, d.URL, d.FileName, d.Transient,
		d.IncludeScreenshots, d.IncludeActivityLevel, d.IncludePayRate, d.IncludeApps,
	))
	if err != nil {
		return report.Definition{}, fmt.Errorf("failed to create report: %w", err)
	}
	return created, nil
}

// GetByID implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) GetByID(ctx context.Context, id string) (report.Definition, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByURL implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) GetByURL(ctx context.Context, url string) (report.Definition, error) {
	return r.getOne(ctx, `url = $1`, url)
}

// ListByOwner implements report.DefinitionRepository. Transient rows are hidden.
func (r *definitionRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]report.Definition, error) {
	return r.queryDefinitions(ctx, `
		SELECT `+definitionColumns+`
		FROM reports
		WHERE owner_id = $1 AND NOT transient
		ORDER BY created_at DESC, id
	`, ownerID)
}

// ListScheduled implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) ListScheduled(ctx context.Context) ([]report.Definition, error) {
	return r.queryDefinitions(ctx, `
		SELECT `+definitionColumns+`
		FROM reports
		WHERE schedule AND NOT transient AND cron_string <> ''
		ORDER BY id
	`)
}

// MarkRun implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) MarkRun(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE reports SET last_run_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark run of report %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// Delete implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// ListTransientBefore implements report.DefinitionRepository.
func (r *definitionRepositoryImpl) ListTransientBefore(ctx context.Context, t time.Time) ([]report.Definition, error) {
	return r.queryDefinitions(ctx, `
		SELECT `+definitionColumns+`
		FROM reports
		WHERE transient AND created_at < $1
		ORDER BY created_at
	`, t)
}
