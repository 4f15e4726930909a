package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/domain"
)

// Outcome is the result of a controller command that was processed without
// a storage fault. A rejected command has Accepted false and Reason set to
// one of the domain sentinel errors.
type Outcome struct {
	Accepted    bool
	Reason      error
	Message     string
	PromptLogin bool
}

// View is what the page renders for one filter: the visible books in
// catalog order, the category options and the session user.
type View struct {
	Books      []domain.Book
	Categories []domain.Category
	Filter     catalog.Filter
	Username   string // Empty when logged out.
	Borrowed   []int64
	Total      int
}

// LoggedIn reports whether the view has a session user.
func (v View) LoggedIn() bool { return v.Username != "" }

// ControllerOptions configures how a Controller treats passwords and loans.
type ControllerOptions struct {
	Passwords PasswordPolicy
	LoanDays  int
	Now       func() time.Time
}

// Controller owns one profile's catalog and session. Commands are serialized
// by its mutex, so a profile observes one event at a time.
type Controller struct {
	mu          sync.Mutex
	books       *catalog.Store
	users       domain.UserRegistry
	auth        *AuthService
	circulation *CirculationService
	username    string
}

// NewController builds a controller over a fresh catalog and the profile's
// storage. Registry entries are reconciled with the catalog and the saved
// session, if any, is restored.
func NewController(ctx context.Context, storage domain.LocalStorage, books []domain.Book, opts ControllerOptions) (*Controller, error) {
	if opts.Passwords == nil {
		opts.Passwords = PlainPasswords{}
	}

	store := catalog.NewStore(books)
	users := NewRegistry(storage)
	c := &Controller{
		books:       store,
		users:       users,
		auth:        NewAuthService(users, NewSessionStore(storage), opts.Passwords),
		circulation: NewCirculationService(store, users, opts.LoanDays, opts.Now),
	}

	if err := c.reconcile(ctx); err != nil {
		return nil, err
	}

	user, err := c.auth.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if user != nil {
		c.username = user.Username
	}
	return c, nil
}

// reconcile rewrites each user's borrowed set to match the catalog, which
// is the side that owns borrow state.
func (c *Controller) reconcile(ctx context.Context) error {
	users, err := c.users.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	changed := false
	for i := range users {
		held := c.books.BorrowedBy(users[i].Username)
		if held == nil {
			held = []int64{}
		}
		if !slices.Equal(users[i].BorrowedBooks, held) {
			users[i].BorrowedBooks = held
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := c.users.Save(ctx, users); err != nil {
		return fmt.Errorf("reconcile registry: %w", err)
	}
	return nil
}

// Username returns the session user, or "" when logged out.
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Session returns the session user and the books they hold. username is
// "" when logged out.
func (c *Controller) Session() (username string, borrowed []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.username == "" {
		return "", nil
	}
	return c.username, c.books.BorrowedBy(c.username)
}

// Login authenticates or registers username and starts a session.
func (c *Controller) Login(ctx context.Context, username, password string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, _, err := c.auth.Login(ctx, username, password)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return rejected(domain.ErrInvalidInput, "Please enter both username and password.", false), nil
	case errors.Is(err, domain.ErrWrongPassword):
		return rejected(domain.ErrWrongPassword, "Incorrect password.", false), nil
	case errors.Is(err, domain.ErrPasswordTooLong):
		return rejected(domain.ErrPasswordTooLong, "Password is too long.", false), nil
	case err != nil:
		return Outcome{}, err
	}

	c.username = user.Username
	return Outcome{Accepted: true, Message: fmt.Sprintf("Welcome, %s!", user.Username)}, nil
}

// Logout ends the session.
func (c *Controller) Logout(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.auth.Logout(ctx); err != nil {
		return Outcome{}, err
	}
	c.username = ""
	return Outcome{Accepted: true}, nil
}

// Borrow lends a book to the session user.
func (c *Controller) Borrow(ctx context.Context, bookID int64) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	book, err := c.circulation.Borrow(ctx, bookID, c.username)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return rejected(domain.ErrUnauthenticated, "You must be logged in to borrow books.", true), nil
	case errors.Is(err, domain.ErrAlreadyBorrowed):
		return rejected(domain.ErrAlreadyBorrowed, "This book is already borrowed.", false), nil
	case errors.Is(err, domain.ErrNotFound):
		return rejected(domain.ErrNotFound, "Book not found.", false), nil
	case err != nil:
		return Outcome{}, err
	}

	return Outcome{
		Accepted: true,
		Message:  fmt.Sprintf("Book borrowed by %s. Due date: %s", c.username, book.DueDateString()),
	}, nil
}

// Return takes a book back from the session user.
func (c *Controller) Return(ctx context.Context, bookID int64) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	book, err := c.circulation.Return(ctx, bookID, c.username)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return rejected(domain.ErrUnauthenticated, "You must be logged in.", true), nil
	case errors.Is(err, domain.ErrNotBorrowed):
		return rejected(domain.ErrNotBorrowed, "This book is not currently borrowed.", false), nil
	case errors.Is(err, domain.ErrNotBorrower):
		return rejected(domain.ErrNotBorrower, "You can only return books you borrowed.", false), nil
	case errors.Is(err, domain.ErrNotFound):
		return rejected(domain.ErrNotFound, "Book not found.", false), nil
	case err != nil:
		return Outcome{}, err
	}

	return Outcome{
		Accepted: true,
		Message:  fmt.Sprintf("Thank you for returning \"%s\".", book.Title),
	}, nil
}

// Snapshot renders the catalog under f.
func (c *Controller) Snapshot(f catalog.Filter) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Books:      c.books.Find(f),
		Categories: c.books.Categories(),
		Filter:     f,
		Username:   c.username,
		Total:      c.books.Len(),
	}
	if c.username != "" {
		v.Borrowed = c.books.BorrowedBy(c.username)
	}
	return v
}

// Book returns a copy of one catalog record.
func (c *Controller) Book(id int64) (domain.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.books.Get(id)
	if err != nil {
		return domain.Book{}, err
	}
	return b.Clone(), nil
}

func rejected(reason error, message string, promptLogin bool) Outcome {
	return Outcome{Reason: reason, Message: message, PromptLogin: promptLogin}
}
