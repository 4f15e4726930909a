package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/bookshelf/internal/domain"
)

// APIHandler exposes the profile's catalog and session as JSON.
type APIHandler struct{}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

// HandleListBooks returns the books visible under the search and category
// query parameters.
// GET /api/books?search=...&category=...
// Response: {"books": [...], "total": n}
func (h *APIHandler) HandleListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := filterSignals{Search: q.Get("search"), Category: q.Get("category")}.filter()

	v := ControllerFromContext(r.Context()).Snapshot(filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"books": toBookDTOs(v.Books),
		"total": v.Total,
	})
}

// HandleGetBook returns one book.
// GET /api/books/{id}
// Response: {"book": {...}}
func (h *APIHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := bookIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book id.")
		return
	}

	book, err := ControllerFromContext(r.Context()).Book(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Book not found.")
			return
		}
		slog.Error("get book", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"book": toBookDTO(book)})
}

// HandleSession returns the session user and their borrowed books.
// GET /api/session
// Response: {"session": {...}}
func (h *APIHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	username, borrowed := ControllerFromContext(r.Context()).Session()
	writeJSON(w, http.StatusOK, map[string]any{"session": toSessionDTO(username, borrowed)})
}
