package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hongminglow/payment-gateway/internal/storage"
	"github.com/hongminglow/payment-gateway/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// uniqueViolation is the SQLSTATE Postgres reports for unique index conflicts.
const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for users and payments.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to databaseURL and applies pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Stats reports row counts for the status endpoint.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	stats := storage.Stats{Driver: "postgres"}
	const query = `SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM payments);`
	if err := s.pool.QueryRow(ctx, query).Scan(&stats.Users, &stats.Payments); err != nil {
		return storage.Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
