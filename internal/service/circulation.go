package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/domain"
)

// DefaultLoanDays is the loan period used when none is configured.
const DefaultLoanDays = 14

// CirculationService moves books between available and borrowed, keeping
// the book's borrower and the user's borrowed set in step.
type CirculationService struct {
	books    *catalog.Store
	users    domain.UserRegistry
	loanDays int
	now      func() time.Time
}

// NewCirculationService creates a new CirculationService. A nil now uses
// time.Now; a non-positive loanDays uses DefaultLoanDays.
func NewCirculationService(books *catalog.Store, users domain.UserRegistry, loanDays int, now func() time.Time) *CirculationService {
	if now == nil {
		now = time.Now
	}
	if loanDays <= 0 {
		loanDays = DefaultLoanDays
	}
	return &CirculationService{
		books:    books,
		users:    users,
		loanDays: loanDays,
		now:      now,
	}
}

// Borrow lends bookID to username. The due date is the borrow date plus the
// loan period, at day granularity.
func (s *CirculationService) Borrow(ctx context.Context, bookID int64, username string) (domain.Book, error) {
	if username == "" {
		return domain.Book{}, domain.ErrUnauthenticated
	}

	book, err := s.books.Get(bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if book.IsBorrowed {
		return domain.Book{}, domain.ErrAlreadyBorrowed
	}

	now := s.now().UTC()
	due := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, s.loanDays)
	borrower := username

	prev := book.Clone()
	book.IsBorrowed = true
	book.Borrower = &borrower
	book.DueDate = &due
	book.History = append(book.History, domain.HistoryEntry{
		Action:    domain.ActionBorrowed,
		Borrower:  username,
		Timestamp: now,
	})

	if err := s.updateUser(ctx, username, func(u *domain.User) { u.AddBorrowed(bookID) }); err != nil {
		*book = prev
		return domain.Book{}, err
	}
	return book.Clone(), nil
}

// Return takes bookID back from username, who must be its current borrower.
func (s *CirculationService) Return(ctx context.Context, bookID int64, username string) (domain.Book, error) {
	if username == "" {
		return domain.Book{}, domain.ErrUnauthenticated
	}

	book, err := s.books.Get(bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if !book.IsBorrowed {
		return domain.Book{}, domain.ErrNotBorrowed
	}
	if !book.BorrowedBy(username) {
		return domain.Book{}, domain.ErrNotBorrower
	}

	prev := book.Clone()
	book.History = append(book.History, domain.HistoryEntry{
		Action:    domain.ActionReturned,
		Borrower:  username,
		Timestamp: s.now().UTC(),
	})
	book.IsBorrowed = false
	book.Borrower = nil
	book.DueDate = nil

	if err := s.updateUser(ctx, username, func(u *domain.User) { u.RemoveBorrowed(bookID) }); err != nil {
		*book = prev
		return domain.Book{}, err
	}
	return book.Clone(), nil
}

// updateUser applies fn to the registry entry for username and rewrites the
// registry. A username missing from the registry is left alone.
func (s *CirculationService) updateUser(ctx context.Context, username string, fn func(*domain.User)) error {
	user, err := s.users.Find(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("session user missing from registry", "username", username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	fn(user)
	if err := s.users.Put(ctx, *user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
