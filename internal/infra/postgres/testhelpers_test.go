package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	testcontainers "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"bloglist/internal/domain/entry"
	"bloglist/internal/domain/user"
	"bloglist/internal/platform/migration"
)

// setupPostgres connects to TEST_POSTGRES_URL when set, otherwise starts a
// throwaway container. Tests are skipped when neither is available.
func setupPostgres(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()
	if connStr := os.Getenv("TEST_POSTGRES_URL"); connStr != "" {
		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			t.Skipf("failed to connect to test database: %v", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			t.Skipf("failed to ping test database: %v", err)
		}
		applyTestMigrations(t, connStr)
		cleanupTables(t, pool)
		return pool, pool.Close
	}

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16"),
		tcpostgres.WithDatabase("test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
	)
	if err != nil {
		t.Skipf("skipping postgres integration test: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// the container reports ready before it accepts connections
	for i := 0; i < 50; i++ {
		if err = pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.NoError(t, err)
	applyTestMigrations(t, connStr)

	return pool, func() {
		pool.Close()
		_ = container.Terminate(context.Background())
	}
}

// applyTestMigrations brings the schema up with the embedded migrations.
func applyTestMigrations(t *testing.T, connStr string) {
	t.Helper()

	runner, err := migration.New(migration.Config{
		DatabaseURL: connStr,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, runner.Close())
	}()
	require.NoError(t, runner.Up())
}

// cleanupTables removes all data from test tables.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE entries, users CASCADE")
	require.NoError(t, err)
}

// insertUser stores a user through the repository.
func insertUser(t *testing.T, repo *UserRepository, username string) *user.User {
	t.Helper()

	u, err := user.New(user.Params{
		ID:           uuid.New(),
		Username:     username,
		Name:         strings.ToUpper(username),
		PasswordHash: "$2a$04$placeholder",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// testEntry builds an entry owned by owner with default values.
func testEntry(owner *user.User, overrides ...func(*entry.Entry)) *entry.Entry {
	now := time.Now().UTC().Truncate(time.Microsecond)
	e := &entry.Entry{
		ID:        uuid.New(),
		Title:     "Test Article",
		URL:       fmt.Sprintf("https://example.com/test-article-%s", uuid.New().String()),
		Likes:     10,
		Owner:     owner.Public(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, override := range overrides {
		override(e)
	}
	return e
}

// assertEntryEqual compares two entries for equality.
func assertEntryEqual(t *testing.T, expected, actual *entry.Entry) {
	t.Helper()

	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.Title, actual.Title)
	require.Equal(t, expected.Author, actual.Author)
	require.Equal(t, expected.URL, actual.URL)
	require.Equal(t, expected.Likes, actual.Likes)
	require.Equal(t, expected.Owner, actual.Owner)
	require.WithinDuration(t, expected.CreatedAt, actual.CreatedAt, time.Second)
	require.WithinDuration(t, expected.UpdatedAt, actual.UpdatedAt, time.Second)
}
