package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LoadSnapshot returns the payload stored under key.
// found is false when nothing has been saved under the key yet.
func (s *Store) LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE key = ?
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return []byte(payload), true, nil
}

// SaveSnapshot upserts the payload under key, replacing any previous value.
func (s *Store) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at_ms = excluded.updated_at_ms
	`, key, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}
