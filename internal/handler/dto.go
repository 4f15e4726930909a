package handler

import (
	"time"

	"github.com/msomdec/bookshelf/internal/domain"
)

// BookDTO is the JSON representation of a book.
type BookDTO struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Category    string       `json:"category"`
	Year        int          `json:"year"`
	ISBN        string       `json:"isbn"`
	Description string       `json:"description"`
	IsBorrowed  bool         `json:"isBorrowed"`
	Borrower    *string      `json:"borrower"`
	DueDate     *string      `json:"dueDate"`
	History     []HistoryDTO `json:"history"`
}

// HistoryDTO is the JSON representation of a circulation event.
type HistoryDTO struct {
	Action    string `json:"action"`
	Borrower  string `json:"borrower"`
	Timestamp string `json:"timestamp"`
}

func toBookDTO(b domain.Book) BookDTO {
	dto := BookDTO{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Category:    string(b.Category),
		Year:        b.Year,
		ISBN:        b.ISBN,
		Description: b.Description,
		IsBorrowed:  b.IsBorrowed,
		Borrower:    b.Borrower,
		History:     make([]HistoryDTO, len(b.History)),
	}
	if b.DueDate != nil {
		due := b.DueDateString()
		dto.DueDate = &due
	}
	for i, h := range b.History {
		dto.History[i] = HistoryDTO{
			Action:    string(h.Action),
			Borrower:  h.Borrower,
			Timestamp: h.Timestamp.Format(time.RFC3339),
		}
	}
	return dto
}

func toBookDTOs(books []domain.Book) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i, b := range books {
		dtos[i] = toBookDTO(b)
	}
	return dtos
}

// SessionDTO is the JSON representation of the profile's session.
type SessionDTO struct {
	LoggedIn      bool    `json:"loggedIn"`
	Username      string  `json:"username"`
	BorrowedBooks []int64 `json:"borrowedBooks"`
}

func toSessionDTO(username string, borrowed []int64) SessionDTO {
	if borrowed == nil {
		borrowed = []int64{}
	}
	return SessionDTO{
		LoggedIn:      username != "",
		Username:      username,
		BorrowedBooks: borrowed,
	}
}
