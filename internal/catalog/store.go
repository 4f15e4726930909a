package catalog

import (
	"github.com/msomdec/bookshelf/internal/domain"
)

// Store owns the book collection of one profile. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	books []*domain.Book
	byID  map[int64]*domain.Book
}

// NewStore takes ownership of books, keeping their order.
func NewStore(books []domain.Book) *Store {
	s := &Store{
		books: make([]*domain.Book, len(books)),
		byID:  make(map[int64]*domain.Book, len(books)),
	}
	for i := range books {
		b := &books[i]
		s.books[i] = b
		s.byID[b.ID] = b
	}
	return s
}

// Len returns the number of books.
func (s *Store) Len() int { return len(s.books) }

// Get returns the live record for id, for in-place mutation by the
// circulation service.
func (s *Store) Get(id int64) (*domain.Book, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// All returns copies of every book in collection order.
func (s *Store) All() []domain.Book {
	return s.Find(Filter{})
}

// Find returns copies of the books visible under f, in collection order.
func (s *Store) Find(f Filter) []domain.Book {
	visible := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if f.Matches(b) {
			visible = append(visible, b.Clone())
		}
	}
	return visible
}

// Categories returns the distinct categories present, in order of first appearance.
func (s *Store) Categories() []domain.Category {
	seen := make(map[domain.Category]bool)
	var cats []domain.Category
	for _, b := range s.books {
		if !seen[b.Category] {
			seen[b.Category] = true
			cats = append(cats, b.Category)
		}
	}
	return cats
}

// BorrowedBy returns the ids of books currently held by username.
func (s *Store) BorrowedBy(username string) []int64 {
	var ids []int64
	for _, b := range s.books {
		if b.BorrowedBy(username) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
