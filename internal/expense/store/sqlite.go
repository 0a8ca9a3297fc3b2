package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite keeps the expense blob as one row of the kv table.
type SQLite struct {
	db  *sql.DB
	key string
}

func NewSQLite(db *sql.DB, key string) *SQLite {
	return &SQLite{db: db, key: key}
}

func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("loading %q: %w", s.key, err)
	}

	return data, nil
}

func (s *SQLite) Save(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, s.key, data); err != nil {
		return fmt.Errorf("saving %q: %w", s.key, err)
	}

	return nil
}
