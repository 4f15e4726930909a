// Package memory provides process-local storage, used for ephemeral servers
// and tests.
package memory

import (
	"context"
	"sync"

	"github.com/msomdec/bookshelf/internal/domain"
)

// Storage holds the key/value data of every profile in memory.
type Storage struct {
	mu       sync.Mutex
	profiles map[string]map[string]string
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{profiles: make(map[string]map[string]string)}
}

// LocalStorage returns the store of one profile.
func (s *Storage) LocalStorage(profileID string) domain.LocalStorage {
	return &LocalStorage{parent: s, profileID: profileID}
}

// LocalStorage implements domain.LocalStorage on top of Storage.
type LocalStorage struct {
	parent    *Storage
	profileID string
}

func (l *LocalStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	l.parent.mu.Lock()
	defer l.parent.mu.Unlock()
	v, ok := l.parent.profiles[l.profileID][key]
	return v, ok, nil
}

func (l *LocalStorage) SetItem(_ context.Context, key, value string) error {
	l.parent.mu.Lock()
	defer l.parent.mu.Unlock()
	items, ok := l.parent.profiles[l.profileID]
	if !ok {
		items = make(map[string]string)
		l.parent.profiles[l.profileID] = items
	}
	items[key] = value
	return nil
}

func (l *LocalStorage) RemoveItem(_ context.Context, key string) error {
	l.parent.mu.Lock()
	defer l.parent.mu.Unlock()
	delete(l.parent.profiles[l.profileID], key)
	return nil
}
