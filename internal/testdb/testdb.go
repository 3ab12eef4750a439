//go:build integration

// Package testdb provides database helpers for integration tests. Tests are
// skipped unless LESSONDECK_TEST_DATABASE_URL names a reachable Postgres.
package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/platform/postgres"
	"github.com/phrazzld/lessondeck/internal/redact"
)

// EnvDatabaseURL names the variable holding the test database URL.
const EnvDatabaseURL = "LESSONDECK_TEST_DATABASE_URL"

var migrateOnce sync.Once

// DatabaseURL returns the test database URL, or "" when none is configured.
func DatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// Open connects to the test database and applies the migrations once per
// test binary. The connection is closed when t finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url}, log)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", redact.String(url), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var migrateErr error
	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, log)
	})
	if migrateErr != nil {
		t.Fatalf("failed to migrate test database: %v", migrateErr)
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can write freely without affecting each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
