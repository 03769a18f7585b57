package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
)

type activityReaderImpl struct {
	db *database.DB
}

func NewActivityReader(db *database.DB) report.ActivityReader {
	return &activityReaderImpl{db: db}
}

// ListRecords implements report.ActivityReader. A nil id list in the filter
// is sent as NULL and matches everything; an empty one matches nothing.
func (r *activityReaderImpl) ListRecords(ctx context.Context, filter report.ActivityFilter) ([]report.ActivityRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.employee_id, TRIM(e.first_name || ' ' || e.last_name), e.pay_rate,
			a.client_id, COALESCE(c.name, ''), a.project_id, COALESCE(p.name, ''),
			a.task, a.start_time, a.end_time, a.activity_on, a.is_internal, a.performance
		FROM activities a
		JOIN employees e ON e.id = a.employee_id
		LEFT JOIN clients c ON c.id = a.client_id
		LEFT JOIN projects p ON p.id = a.project_id
		WHERE ($1::text[] IS NULL OR a.employee_id::text = ANY($1::text[]))
			AND ($2::text[] IS NULL OR a.project_id::text = ANY($2::text[]))
			AND ($3::text[] IS NULL OR a.client_id::text = ANY($3::text[]))
			AND a.activity_on BETWEEN $4 AND $5
		ORDER BY a.start_time, a.id
	`

	rows, err := q.Query(ctx, query, filter.EmployeeIDs, filter.ProjectIDs, filter.ClientIDs, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var records []report.ActivityRecord
	index := make(map[string]int)
	for rows.Next() {
		var rec report.ActivityRecord
		err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.PayRate,
			&rec.ClientID, &rec.ClientName, &rec.ProjectID, &rec.ProjectName,
			&rec.Task, &rec.StartTime, &rec.EndTime, &rec.ActivityOn, &rec.IsInternal, &rec.Performance,
		)
		if err != nil {
			return nil, err
		}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return records, nil
	}
	if err := r.attachScreenshots(ctx, q, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *activityReaderImpl) attachScreenshots(ctx context.Context, q database.Querier, records []report.ActivityRecord, index map[string]int) error {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	query := `
		SELECT id, activity_id, title, activity_at, consume_time, performance
		FROM screenshots
		WHERE activity_id::text = ANY($1::text[])
		ORDER BY activity_at, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query screenshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sh         report.ScreenshotRecord
			activityID string
		)
		if err := rows.Scan(&sh.ID, &activityID, &sh.Title, &sh.ActivityAt, &sh.ConsumeTime, &sh.Performance); err != nil {
			return err
		}
		if i, ok := index[activityID]; ok {
			records[i].Screenshots = append(records[i].Screenshots, sh)
		}
	}
	return rows.Err()
}
