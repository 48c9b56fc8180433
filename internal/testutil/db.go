//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB connects to the test database and applies the schema migration.
// It skips the test if TEST_DATABASE_URL is not set.
// Each call uses the same DB — callers must scope isolation by unique task IDs.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping test DB: %v", err)
	}

	applyMigrations(t, pool)

	t.Cleanup(func() { pool.Close() })
	return pool
}

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	migrations := []string{
		"internal/adapter/postgres/migrations/001_initial.sql",
	}
	for _, path := range migrations {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Logf("migration file %s not found, skipping: %v", path, err)
			continue
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			// Migrations may fail if already applied — log and continue.
			t.Logf("migration %s: %v (may already be applied)", path, err)
		}
	}
}

// CreateProvider inserts a provider row with the given coin balance and
// returns its ID. The row is removed when the test finishes.
func CreateProvider(t *testing.T, pool *pgxpool.Pool, coins int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO providers (id, name, bid_coins) VALUES ($1, $2, $3)`,
		id, "provider-"+id.String()[:8], coins)
	if err != nil {
		t.Fatalf("insert provider: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM providers WHERE id = $1`, id)
	})
	return id
}

// CreateTask inserts an open task owned by ownerID with the given deadline
// and returns its ID. Bids cascade-delete with the task row on cleanup.
func CreateTask(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, deadline time.Time) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, address, category, owner_id, deadline, status)
		 VALUES ($1, 'fix leaking tap', 'kitchen tap drips', '12 Rothschild Blvd', 'plumbing', $2, $3, 'open')`,
		id, ownerID, deadline)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM tasks WHERE id = $1`, id)
	})
	return id
}
