package domain

import (
	"context"
	"slices"
)

// User is a registry entry. Password holds whatever the configured password
// policy stores: the plain password by default, or a bcrypt hash.
type User struct {
	Username      string
	Password      string
	BorrowedBooks []int64
}

// HasBorrowed reports whether bookID is in the user's borrowed set.
func (u *User) HasBorrowed(bookID int64) bool {
	return slices.Contains(u.BorrowedBooks, bookID)
}

// AddBorrowed inserts bookID into the borrowed set if it is not present.
func (u *User) AddBorrowed(bookID int64) {
	if !u.HasBorrowed(bookID) {
		u.BorrowedBooks = append(u.BorrowedBooks, bookID)
	}
}

// RemoveBorrowed deletes bookID from the borrowed set.
func (u *User) RemoveBorrowed(bookID int64) {
	u.BorrowedBooks = slices.DeleteFunc(u.BorrowedBooks, func(id int64) bool { return id == bookID })
}

// Clone returns a copy whose BorrowedBooks slice is not shared with u.
func (u *User) Clone() User {
	c := *u
	c.BorrowedBooks = append([]int64{}, u.BorrowedBooks...)
	return c
}

// UserRegistry is the durable collection of known users. It is loaded and
// written as a whole; Find and Put are read-modify-write over the full set.
type UserRegistry interface {
	Load(ctx context.Context) ([]User, error)
	Save(ctx context.Context, users []User) error
	// Find returns the user with the given username, or ErrNotFound.
	Find(ctx context.Context, username string) (*User, error)
	// Put inserts user, or replaces the entry with the same username.
	Put(ctx context.Context, user User) error
}
