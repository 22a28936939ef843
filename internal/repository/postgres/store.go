// Package postgres provides pgx-backed repositories.
package postgres

import (
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// NewStore opens a pool, applies the schema and wires every repository.
func NewStore(ctx context.Context, dsn string) (*repository.Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	repo := NewRepository(pool)
	return &repository.Store{
		Users:        &userRepository{repo},
		MuscleGroups: &muscleGroupRepository{repo},
		Exercises:    &exerciseRepository{repo},
		Sessions:     &sessionRepository{repo},
		SetRecords:   &setRecordRepository{repo},
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

// EnsureSchema creates tables and indexes when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Repository holds the shared pool behind the per-entity repositories.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
