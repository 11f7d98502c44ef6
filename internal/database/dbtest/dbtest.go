// Package dbtest opens a migrated, empty PostgreSQL database for store tests.
// Tests are skipped unless WATER_TEST_DATABASE_URL points at a disposable
// database.
package dbtest

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"water-delivery/internal/config"
	"water-delivery/internal/database"
	"water-delivery/internal/logger"
)

const EnvURL = "WATER_TEST_DATABASE_URL"

const truncateSQL = `TRUNCATE sessions, order_items, orders, customers, products, users RESTART IDENTITY CASCADE`

// Open connects, migrates and truncates every table. The pool is closed when
// the test ends.
func Open(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set; skipping PostgreSQL test", EnvURL)
	}
	t.Setenv("DATABASE_URL", url)

	cfg, err := config.Load("testdata/does-not-exist.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg, logger.NewWithWriter("dbtest", "error", io.Discard))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.RunMigrations(ctx))
	require.NoError(t, db.Exec(ctx, truncateSQL))
	return db
}
