//go:build integration

package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Nikitosik2311/parserwb/internal/state"
)

func setupPostgres(t *testing.T) (*state.PostgresStore, string) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("parserwb_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := state.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s, connStr
}

func TestPostgresStore_Ping(t *testing.T) {
	s, _ := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_LoadEmpty(t *testing.T) {
	s, _ := setupPostgres(t)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresStore_SaveReplaces(t *testing.T) {
	s, _ := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, state.NewSet("a", "b")))
	require.NoError(t, s.Save(ctx, state.NewSet("b", "Айфон 16__1__100")))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "Айфон 16__1__100"}, got.Sorted())

	require.NoError(t, s.Save(ctx, state.Set{}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostgresStore_MigrationsIdempotent(t *testing.T) {
	s, connStr := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, state.NewSet("keep")))

	// Reopening reapplies nothing and keeps the data.
	again, err := state.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	defer again.Close()

	got, err := again.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Has("keep"))
}
