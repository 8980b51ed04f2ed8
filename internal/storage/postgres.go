package storage

import (
	"context"
	"database/sql"
	"errors"
)

const (
	getEntryQuery    = `SELECT value FROM kv_entries WHERE key = $1`
	upsertEntryQuery = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	deleteEntryQuery = `DELETE FROM kv_entries WHERE key = $1`
)

// PostgresStore persists entries in the kv_entries table.
type PostgresStore struct {
	notifier
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v string
	if err := s.db.QueryRowContext(ctx, getEntryQuery, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(v), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertEntryQuery, key, string(value)); err != nil {
		return err
	}
	s.notify(key, value)
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteEntryQuery, key); err != nil {
		return err
	}
	s.notify(key, nil)
	return nil
}
