// Package postgresqltest connects repository tests to a disposable PostgreSQL database.
package postgresqltest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
)

// TestDatabaseSetup wraps a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := postgresql.Open(context.Background(), dsn, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to truncate tables: %v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row except the seeded departments and roles.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"attendance_records",
		"status_assignments",
		"status_types",
		"shift_assignments",
		"shift_types",
		"capability_overrides",
		"department_history",
		"fingerprint_devices",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(ctx, "UPDATE departments SET manager_id = NULL"); err != nil {
		return fmt.Errorf("failed to reset department managers: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM employees"); err != nil {
		return fmt.Errorf("failed to delete employees: %w", err)
	}

	// Roles go back to the seeded set with its default grants.
	if _, err := tx.Exec(ctx, "DELETE FROM roles WHERE code NOT IN ('ADMIN', 'HR', 'EMPLOYEE')"); err != nil {
		return fmt.Errorf("failed to delete roles: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM role_capabilities"); err != nil {
		return fmt.Errorf("failed to clear role capabilities: %w", err)
	}
	for role, caps := range rbac.DefaultRoleGrants {
		for _, c := range caps {
			if _, err := tx.Exec(ctx,
				"INSERT INTO role_capabilities (role_code, capability) VALUES ($1, $2)",
				string(role), string(c),
			); err != nil {
				return fmt.Errorf("failed to restore %s grants: %w", role, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
