package state

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 4

// PostgresStore implements Store on the notified_items table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString, verifies the connection and
// applies pending migrations.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Load reads every notified identifier.
func (s *PostgresStore) Load(ctx context.Context) (Set, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM notified_items")
	if err != nil {
		return Set{}, fmt.Errorf("querying notified items: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return Set{}, fmt.Errorf("scanning notified items: %w", err)
	}
	return NewSet(ids...), nil
}

// Save replaces the table contents with set in one transaction. Rows that
// survive keep their original created_at.
func (s *PostgresStore) Save(ctx context.Context, set Set) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := set.Sorted()

	if _, err := tx.Exec(ctx,
		"DELETE FROM notified_items WHERE NOT (id = ANY($1))",
		ids,
	); err != nil {
		return fmt.Errorf("deleting stale notified items: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO notified_items (id)
		SELECT unnest($1::text[])
		ON CONFLICT (id) DO NOTHING
	`, ids); err != nil {
		return fmt.Errorf("inserting notified items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing notified items: %w", err)
	}
	return nil
}
