package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/project"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

// members are aggregated in join order so the creator stays first
const projectSelect = `
	SELECT p.id, p.name, p.client_id, p.leader_id, p.created_by,
		p.budget_period, p.budget_time, p.budget_money, p.created_at, p.updated_at,
		COALESCE(
			(SELECT array_agg(m.employee_id::text ORDER BY m.created_at, m.employee_id)
			 FROM project_members m WHERE m.project_id = p.id),
			'{}'
		)
	FROM projects p
`

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.ClientID, &p.LeaderID, &p.CreatedBy,
		&p.Budget.TimePeriod, &p.Budget.Time, &p.Budget.Money, &p.CreatedAt, &p.UpdatedAt,
		&p.MemberIDs,
	)
	return p, err
}

// GetByID implements project.ProjectRepository.
func (r *projectRepositoryImpl) GetByID(ctx context.Context, id string) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProject(q.QueryRow(ctx, projectSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project with id %s: %w", id, err)
	}
	return p, nil
}

// List implements project.ProjectRepository.
func (r *projectRepositoryImpl) List(ctx context.Context) ([]project.Project, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, projectSelect+` ORDER BY LOWER(p.name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// ListByClient implements project.ProjectRepository.
func (r *projectRepositoryImpl) ListByClient(ctx context.Context, clientID string) ([]client.ProjectRef, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name FROM projects WHERE client_id = $1 ORDER BY LOWER(name)`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []client.ProjectRef
	for rows.Next() {
		var ref client.ProjectRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ExistsByName implements project.ProjectRepository.
func (r *projectRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM projects
			WHERE LOWER(name) = LOWER($1) AND ($2::uuid IS NULL OR id <> $2::uuid)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MissingIDs implements project.ProjectRepository.
func (r *projectRepositoryImpl) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return missingIDs(ctx, GetQuerier(ctx, r.db), "projects", ids)
}

// Create implements project.ProjectRepository. Members are added separately.
func (r *projectRepositoryImpl) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO projects (name, client_id, leader_id, created_by, budget_period, budget_time, budget_money)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.Name, p.ClientID, p.LeaderID, p.CreatedBy,
		string(p.Budget.TimePeriod), p.Budget.Time, p.Budget.Money,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return project.Project{}, project.ErrProjectNameExists
		}
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	p.MemberIDs = nil
	return p, nil
}

// Update implements project.ProjectRepository. Membership is not touched.
func (r *projectRepositoryImpl) Update(ctx context.Context, p project.Project) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE projects
		SET name = $2, client_id = $3, leader_id = $4,
			budget_period = $5, budget_time = $6, budget_money = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		p.ID, p.Name, p.ClientID, p.LeaderID,
		string(p.Budget.TimePeriod), p.Budget.Time, p.Budget.Money,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return project.ErrProjectNameExists
		}
		return fmt.Errorf("failed to update project with id %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// Delete implements project.ProjectRepository. Memberships go with the row.
func (r *projectRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// ClearClient implements project.ProjectRepository.
func (r *projectRepositoryImpl) ClearClient(ctx context.Context, clientID string) (int64, error) {
	return execCount(ctx, GetQuerier(ctx, r.db),
		`UPDATE projects SET client_id = NULL, updated_at = NOW() WHERE client_id = $1`, clientID)
}

// AddMember implements project.ProjectRepository.
func (r *projectRepositoryImpl) AddMember(ctx context.Context, projectID, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `INSERT INTO project_members (project_id, employee_id) VALUES ($1, $2)`, projectID, employeeID)
	if err != nil {
		if isUniqueViolation(err) {
			return project.ErrMemberExists
		}
		return fmt.Errorf("failed to add member %s to project %s: %w", employeeID, projectID, err)
	}
	return nil
}

// RemoveMember implements project.ProjectRepository.
func (r *projectRepositoryImpl) RemoveMember(ctx context.Context, projectID, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1 AND employee_id = $2`, projectID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to remove member %s from project %s: %w", employeeID, projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrMemberNotFound
	}
	return nil
}

// RemoveEmployee implements project.ProjectRepository.
func (r *projectRepositoryImpl) RemoveEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM project_members WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("failed to remove memberships of employee %s: %w", employeeID, err)
	}

	query := `
		UPDATE projects
		SET leader_id = CASE WHEN leader_id = $1 THEN NULL ELSE leader_id END,
			created_by = CASE WHEN created_by = $1 THEN NULL ELSE created_by END,
			updated_at = NOW()
		WHERE leader_id = $1 OR created_by = $1
	`
	if _, err := q.Exec(ctx, query, employeeID); err != nil {
		return fmt.Errorf("failed to clear employee %s from projects: %w", employeeID, err)
	}
	return nil
}
