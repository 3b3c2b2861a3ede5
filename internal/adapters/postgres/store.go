package postgres

// Package postgres provides a PostgreSQL-backed KeyValueStore for hosts that keep
// session state in a shared database.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/target/mmk-ui-session/internal/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "client_sessions"

// Store maps session keys onto rows of a two-column table.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore creates a store over db. The table name may be schema qualified ("auth.sessions").
func NewStore(db *sql.DB, table string) *Store {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return &Store{
		db:    db,
		table: pgx.Identifier(strings.Split(table, ".")).Sanitize(),
	}
}

// Migrate creates the session table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		// Concurrent CREATE TABLE IF NOT EXISTS can still collide on the row type.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil
		}
		return fmt.Errorf("create session table: %w", apperrors.MapDBError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	q := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)
	var v string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres get: %w", apperrors.MapDBError(err))
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery(), key, value); err != nil {
		return fmt.Errorf("postgres set: %w", apperrors.MapDBError(err))
	}
	return nil
}

// SetMany writes all entries in a single transaction.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		q := s.upsertQuery()
		for k, v := range entries {
			if _, err := tx.ExecContext(ctx, q, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres multi set: %w", apperrors.MapDBError(err))
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE key = ANY($1)`, s.table)
	if _, err := s.db.ExecContext(ctx, q, keys); err != nil {
		return fmt.Errorf("postgres remove: %w", apperrors.MapDBError(err))
	}
	return nil
}

func (s *Store) upsertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table)
}

// withTx runs fn inside a transaction and rolls back on error.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
