package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/client"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type clientRepositoryImpl struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) client.ClientRepository {
	return &clientRepositoryImpl{db: db}
}

const clientColumns = `id, name, created_by, manager_id, created_at, updated_at`

func scanClient(row pgx.Row) (client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.Name, &c.CreatedBy, &c.ManagerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID implements client.ClientRepository.
func (r *clientRepositoryImpl) GetByID(ctx context.Context, id string) (client.Client, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanClient(q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return client.Client{}, client.ErrClientNotFound
		}
		return client.Client{}, fmt.Errorf("failed to get client with id %s: %w", id, err)
	}
	return c, nil
}

// List implements client.ClientRepository.
func (r *clientRepositoryImpl) List(ctx context.Context) ([]client.Client, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY LOWER(name)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return clients, nil
}

// ExistsByName implements client.ClientRepository.
func (r *clientRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM clients
			WHERE LOWER(name) = LOWER($1) AND ($2::uuid IS NULL OR id <> $2::uuid)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MissingIDs implements client.ClientRepository.
func (r *clientRepositoryImpl) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return missingIDs(ctx, GetQuerier(ctx, r.db), "clients", ids)
}

// Create implements client.ClientRepository.
func (r *clientRepositoryImpl) Create(ctx context.Context, c client.Client) (client.Client, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO clients (name, created_by, manager_id)
		VALUES ($1, $2, $3)
		RETURNING ` + clientColumns

	created, err := scanClient(q.QueryRow(ctx, query, c.Name, c.CreatedBy, c.ManagerID))
	if err != nil {
		if isUniqueViolation(err) {
			return client.Client{}, client.ErrClientNameExists
		}
		return client.Client{}, fmt.Errorf("failed to create client: %w", err)
	}
	return created, nil
}

// Update implements client.ClientRepository.
func (r *clientRepositoryImpl) Update(ctx context.Context, c client.Client) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE clients SET name = $2, manager_id = $3, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, c.ID, c.Name, c.ManagerID)
	if err != nil {
		if isUniqueViolation(err) {
			return client.ErrClientNameExists
		}
		return fmt.Errorf("failed to update client with id %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

// Delete implements client.ClientRepository.
func (r *clientRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

// ClearEmployee implements client.ClientRepository.
func (r *clientRepositoryImpl) ClearEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE clients
		SET created_by = CASE WHEN created_by = $1 THEN NULL ELSE created_by END,
			manager_id = CASE WHEN manager_id = $1 THEN NULL ELSE manager_id END,
			updated_at = NOW()
		WHERE created_by = $1 OR manager_id = $1
	`

	if _, err := q.Exec(ctx, query, employeeID); err != nil {
		return fmt.Errorf("failed to clear employee %s from clients: %w", employeeID, err)
	}
	return nil
}
