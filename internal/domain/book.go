package domain

import "time"

// Category is one of the fixed genres a catalog book belongs to.
type Category string

const (
	CategoryFiction    Category = "Fiction"
	CategoryNonFiction Category = "Non-Fiction"
	CategoryScience    Category = "Science"
	CategoryHistory    Category = "History"
	CategoryFantasy    Category = "Fantasy"
	CategoryBiography  Category = "Biography"
	CategorySelfHelp   Category = "Self-Help"
	CategoryTechnology Category = "Technology"
)

// AllCategories is the category selector value that disables category filtering.
const AllCategories = "all"

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFiction,
	CategoryNonFiction,
	CategoryScience,
	CategoryHistory,
	CategoryFantasy,
	CategoryBiography,
	CategorySelfHelp,
	CategoryTechnology,
}

// Action names a circulation event recorded in a book's history.
type Action string

const (
	ActionBorrowed Action = "borrowed"
	ActionReturned Action = "returned"
)

// HistoryEntry is one append-only circulation record.
type HistoryEntry struct {
	Action    Action
	Borrower  string
	Timestamp time.Time
}

// Book is a catalog record. Only the borrow fields and History change after
// the catalog is generated.
type Book struct {
	ID          int64
	Title       string
	Author      string
	Category    Category
	Year        int
	ISBN        string
	Description string
	IsBorrowed  bool
	Borrower    *string    // Username of the current borrower; not an owning reference.
	DueDate     *time.Time // Date only, UTC midnight.
	History     []HistoryEntry
}

// BorrowedBy reports whether username currently holds the book.
func (b *Book) BorrowedBy(username string) bool {
	return b.IsBorrowed && b.Borrower != nil && *b.Borrower == username
}

// Consistent reports whether IsBorrowed, Borrower and DueDate agree.
func (b *Book) Consistent() bool {
	return b.IsBorrowed == (b.Borrower != nil) && b.IsBorrowed == (b.DueDate != nil)
}

// Clone returns a deep copy that shares no pointers with b.
func (b *Book) Clone() Book {
	c := *b
	if b.Borrower != nil {
		borrower := *b.Borrower
		c.Borrower = &borrower
	}
	if b.DueDate != nil {
		due := *b.DueDate
		c.DueDate = &due
	}
	c.History = append([]HistoryEntry(nil), b.History...)
	return c
}

// DueDateString formats the due date as YYYY-MM-DD, or "" when not borrowed.
func (b *Book) DueDateString() string {
	if b.DueDate == nil {
		return ""
	}
	return b.DueDate.Format(time.DateOnly)
}
