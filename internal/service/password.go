package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/bookshelf/internal/domain"
)

// PasswordPolicy decides how passwords are written to the registry and how a
// login attempt is checked against the stored value.
type PasswordPolicy interface {
	Seal(password string) (string, error)
	Match(stored, password string) bool
}

// PlainPasswords stores passwords as given and compares them exactly. It
// keeps stored registries in their plain JSON format.
type PlainPasswords struct{}

func (PlainPasswords) Seal(password string) (string, error) { return password, nil }

func (PlainPasswords) Match(stored, password string) bool { return stored == password }

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (p BcryptPasswords) Seal(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (p BcryptPasswords) Match(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewPasswordPolicy returns the policy named by the PASSWORD_HASHING setting.
func NewPasswordPolicy(name string, bcryptCost int) (PasswordPolicy, error) {
	switch name {
	case "", "plain":
		return PlainPasswords{}, nil
	case "bcrypt":
		return BcryptPasswords{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing %q", name)
	}
}
