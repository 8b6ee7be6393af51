package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/vacancy-templater/internal/observability"
)

const createTemplatesTable = `
CREATE TABLE IF NOT EXISTS user_templates (
	owner_id    TEXT PRIMARY KEY,
	body        TEXT NOT NULL CHECK (body <> ''),
	description TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps templates in the user_templates table.
type PostgresStore struct {
	pool    *pgxpool.Pool
	metrics *observability.Metrics
}

// OpenPostgres connects to databaseURL and makes sure the table exists.
func OpenPostgres(ctx context.Context, databaseURL string, metrics *observability.Metrics) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &StorageError{Op: "open", Message: "failed to connect to database", Cause: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &StorageError{Op: "open", Message: "failed to ping database", Cause: err}
	}

	s := &PostgresStore{pool: pool, metrics: metrics}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the templates table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTemplatesTable); err != nil {
		return &StorageError{Op: "migrate", Message: "failed to create user_templates", Cause: err}
	}
	return nil
}

// Get returns nil, nil when the owner has no row.
func (s *PostgresStore) Get(ctx context.Context, ownerID string) (*UserTemplate, error) {
	tpl := UserTemplate{OwnerID: ownerID}
	err := s.pool.QueryRow(ctx,
		`SELECT body, description, updated_at FROM user_templates WHERE owner_id = $1`,
		ownerID,
	).Scan(&tpl.Body, &tpl.Description, &tpl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.metrics.StoreError("get")
		return nil, &StorageError{Op: "get", Message: fmt.Sprintf("failed to read template for %s", ownerID), Cause: err}
	}
	return &tpl, nil
}

// Put upserts body and description in one statement.
func (s *PostgresStore) Put(ctx context.Context, ownerID, body, description string) error {
	if err := validatePut(ownerID, body); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_templates (owner_id, body, description, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (owner_id) DO UPDATE SET body = $2, description = $3, updated_at = NOW()`,
		ownerID, body, description,
	)
	if err != nil {
		s.metrics.StoreError("put")
		return &StorageError{Op: "put", Message: fmt.Sprintf("failed to save template for %s", ownerID), Cause: err}
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
