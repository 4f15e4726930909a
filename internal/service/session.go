package service

import (
	"context"
	"fmt"

	"github.com/msomdec/bookshelf/internal/domain"
)

// SessionStore mirrors the active username under domain.SessionKey so the
// session survives a restart.
type SessionStore struct {
	storage domain.LocalStorage
}

// NewSessionStore creates a SessionStore backed by storage.
func NewSessionStore(storage domain.LocalStorage) *SessionStore {
	return &SessionStore{storage: storage}
}

// Saved returns the saved username, or "" when there is none.
func (s *SessionStore) Saved(ctx context.Context) (string, error) {
	username, ok, err := s.storage.GetItem(ctx, domain.SessionKey)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return "", nil
	}
	return username, nil
}

// Save records username as the active session.
func (s *SessionStore) Save(ctx context.Context, username string) error {
	if err := s.storage.SetItem(ctx, domain.SessionKey, username); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the saved session.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, domain.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
