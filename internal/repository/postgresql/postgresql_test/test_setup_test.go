package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/database"
)

var (
	setupOnce sync.Once
	testDB    *database.DB
	setupErr  error
)

// migrate recreates the schema from the migration files
func migrate(ctx context.Context, db *database.DB) error {
	dir := filepath.Join("..", "..", "..", "..", "migrations")
	for _, name := range []string{"001_init.down.sql", "001_init.up.sql"} {
		sql, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// newTestDB connects to TEST_DATABASE_URL and truncates every table. The
// test is skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	setupOnce.Do(func() {
		testDB, setupErr = database.NewPostgreSQLDB(dsn)
		if setupErr == nil {
			setupErr = migrate(context.Background(), testDB)
		}
	})
	require.NoError(t, setupErr)

	truncateAll(t, testDB)
	return testDB
}

func truncateAll(t *testing.T, db *database.DB) {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	tables := []string{
		"reports",
		"screenshots",
		"activities",
		"project_members",
		"projects",
		"clients",
		"employee_days",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}

	require.NoError(t, tx.Commit(ctx))
}

func createTestEmployee(t *testing.T, db *database.DB, firstName, role string) string {
	t.Helper()
	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO employees (first_name, email, role, pay_rate)
		VALUES ($1, LOWER($1) || '@example.com', $2, 12.50)
		RETURNING id
	`, firstName, role).Scan(&id)
	require.NoError(t, err)
	return id
}
