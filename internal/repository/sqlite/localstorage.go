package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LocalStorage implements domain.LocalStorage for a single profile, one row
// per key.
type LocalStorage struct {
	db        *sql.DB
	profileID string
}

// NewLocalStorage creates a SQLite-backed LocalStorage scoped to profileID.
func NewLocalStorage(db *DB, profileID string) *LocalStorage {
	return &LocalStorage{db: db.SqlDB, profileID: profileID}
}

func (s *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_storage WHERE profile_id = ? AND key = ?`,
		s.profileID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, true, nil
}

func (s *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_storage (profile_id, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (profile_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.profileID, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_storage WHERE profile_id = ? AND key = ?`,
		s.profileID, key,
	)
	if err != nil {
		return fmt.Errorf("remove item %q: %w", key, err)
	}
	return nil
}
