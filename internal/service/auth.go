package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/msomdec/bookshelf/internal/domain"
)

// AuthService handles login, auto-registration and session restore for one
// profile's registry.
type AuthService struct {
	users     domain.UserRegistry
	sessions  *SessionStore
	passwords PasswordPolicy
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRegistry, sessions *SessionStore, passwords PasswordPolicy) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
	}
}

// Login matches username and password against the registry, registering the
// username with the given password when it has not been seen before. On
// success the session key is written and the user is returned along with
// whether it was newly created.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, bool, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, false, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.Find(ctx, username)
	created := false
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sealed, err := s.passwords.Seal(password)
		if err != nil {
			return nil, false, err
		}
		user = &domain.User{Username: username, Password: sealed, BorrowedBooks: []int64{}}
		if err := s.users.Put(ctx, *user); err != nil {
			return nil, false, fmt.Errorf("register user: %w", err)
		}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("find user: %w", err)
	case !s.passwords.Match(user.Password, password):
		return nil, false, domain.ErrWrongPassword
	}

	if err := s.sessions.Save(ctx, username); err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// Logout clears the saved session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Restore resumes the saved session without a password. It returns nil when
// there is no saved session, and removes a saved username that is no longer
// in the registry.
func (s *AuthService) Restore(ctx context.Context) (*domain.User, error) {
	username, err := s.sessions.Saved(ctx)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, nil
	}

	user, err := s.users.Find(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Info("dropping stale session", "username", username)
		return nil, s.sessions.Clear(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
