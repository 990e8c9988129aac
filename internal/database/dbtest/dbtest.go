// Package dbtest opens a migrated Postgres database for store tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikhilbhutani/docchat/internal/config"
	"github.com/nikhilbhutani/docchat/internal/database"
	"github.com/stretchr/testify/require"
)

// migrationLock is the advisory lock key held while migrating, so packages
// tested in parallel do not race on schema_migrations.
const migrationLock = 7231

// Open connects to TEST_DATABASE_URL, applies the migrations and empties the
// given tables. The test is skipped when the variable is unset.
func Open(t *testing.T, tables ...string) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := database.NewPool(ctx, config.DatabaseConfig{URL: url, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLock)
	require.NoError(t, err)
	_, migErr := database.RunMigrations(ctx, pool, migrationsDir())
	_, err = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLock)
	conn.Release()
	require.NoError(t, migErr)
	require.NoError(t, err)

	if len(tables) > 0 {
		_, err = pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY")
		require.NoError(t, err)
	}
	return pool
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
