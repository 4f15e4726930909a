package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("not logged in")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrPasswordTooLong = errors.New("password too long")
	ErrAlreadyBorrowed = errors.New("book already borrowed")
	ErrNotBorrowed     = errors.New("book not borrowed")
	ErrNotBorrower     = errors.New("book borrowed by another user")
)
