package service

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/msomdec/bookshelf/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// registryRecord is the stored shape of one user under domain.RegistryKey.
type registryRecord struct {
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	BorrowedBooks []int64 `json:"borrowedBooks"`
}

// Registry implements domain.UserRegistry on a profile's LocalStorage. The
// whole registry is read and rewritten on every access.
type Registry struct {
	storage domain.LocalStorage
}

var _ domain.UserRegistry = (*Registry)(nil)

// NewRegistry creates a Registry backed by storage.
func NewRegistry(storage domain.LocalStorage) *Registry {
	return &Registry{storage: storage}
}

// Load returns every user. A missing or malformed registry is an empty one.
func (r *Registry) Load(ctx context.Context) ([]domain.User, error) {
	raw, ok, err := r.storage.GetItem(ctx, domain.RegistryKey)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var records []registryRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Warn("discarding malformed user registry", "error", err)
		return nil, nil
	}

	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		if rec.Username == "" {
			continue
		}
		users = append(users, domain.User{
			Username:      rec.Username,
			Password:      rec.Password,
			BorrowedBooks: append([]int64{}, rec.BorrowedBooks...),
		})
	}
	return users, nil
}

// Save replaces the stored registry with users.
func (r *Registry) Save(ctx context.Context, users []domain.User) error {
	records := make([]registryRecord, len(users))
	for i, u := range users {
		borrowed := u.BorrowedBooks
		if borrowed == nil {
			borrowed = []int64{}
		}
		records[i] = registryRecord{Username: u.Username, Password: u.Password, BorrowedBooks: borrowed}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := r.storage.SetItem(ctx, domain.RegistryKey, string(data)); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// Find returns the user with the given username, or domain.ErrNotFound.
func (r *Registry) Find(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Put inserts user, or replaces the entry with the same username, and
// rewrites the registry.
func (r *Registry) Put(ctx context.Context, user domain.User) error {
	users, err := r.Load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range users {
		if users[i].Username == user.Username {
			users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, user)
	}
	return r.Save(ctx, users)
}
