package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, first_name, last_name, email, role, pay_rate, last_active, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Role,
		&e.PayRate, &e.LastActive, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return e, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY first_name, last_name, id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// MissingIDs implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return missingIDs(ctx, GetQuerier(ctx, r.db), "employees", ids)
}

// Update implements employee.EmployeeRepository. Nil fields keep their value.
func (r *employeeRepositoryImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			pay_rate = COALESCE($4, pay_rate),
			role = COALESCE($5, role),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, req.FirstName, req.LastName, req.PayRate, req.Role)
	if err != nil {
		return fmt.Errorf("failed to update employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdateLastActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateLastActive(ctx context.Context, id string, lastActive time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET last_active = $2 WHERE id = $1`, id, lastActive)
	if err != nil {
		return fmt.Errorf("failed to update last active for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete implements employee.EmployeeRepository. Day buckets go with the row.
func (r *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// LockByID implements employee.EmployeeRepository. Outside a transaction
// the lock is released as soon as the statement ends.
func (r *employeeRepositoryImpl) LockByID(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee with id %s: %w", id, err)
	}
	return nil
}

// ListDays implements employee.EmployeeRepository. Buckets come back in creation order.
func (r *employeeRepositoryImpl) ListDays(ctx context.Context, employeeID string) ([]employee.DayBucket, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT date, activity_ids::text[], daily_time
		FROM employee_days
		WHERE employee_id = $1
		ORDER BY seq
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []employee.DayBucket
	for rows.Next() {
		var d employee.DayBucket
		if err := rows.Scan(&d.Date, &d.ActivityIDs, &d.DailyTime); err != nil {
			return nil, err
		}
		days = append(days, d)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

// UpsertDay implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpsertDay(ctx context.Context, employeeID string, day employee.DayBucket) error {
	q := GetQuerier(ctx, r.db)

	ids := day.ActivityIDs
	if ids == nil {
		ids = []string{}
	}

	query := `
		INSERT INTO employee_days (employee_id, date, activity_ids, daily_time)
		VALUES ($1, $2, $3::text[]::uuid[], $4)
		ON CONFLICT (employee_id, date)
		DO UPDATE SET activity_ids = EXCLUDED.activity_ids, daily_time = EXCLUDED.daily_time
	`

	if _, err := q.Exec(ctx, query, employeeID, day.Date, ids, day.DailyTime); err != nil {
		return fmt.Errorf("failed to save day %s for employee %s: %w", day.Date, employeeID, err)
	}
	return nil
}

// missingIDs returns the ids absent from table, in input order.
func missingIDs(ctx context.Context, q database.Querier, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT u.id
		FROM unnest($1::text[]) WITH ORDINALITY AS u(id, ord)
		WHERE NOT EXISTS (SELECT 1 FROM %s t WHERE t.id::text = u.id)
		ORDER BY u.ord
	`, table)

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s ids: %w", table, err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}
