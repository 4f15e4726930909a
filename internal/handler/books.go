package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/service"
	"github.com/msomdec/bookshelf/internal/view"
)

// filterSignals are the page signals that select the visible books.
type filterSignals struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

func (s filterSignals) filter() catalog.Filter {
	category := strings.TrimSpace(s.Category)
	if category == "" {
		category = domain.AllCategories
	}
	return catalog.Filter{Search: s.Search, Category: category}
}

// readFilter reads the filter signals sent with a datastar request. Missing
// or malformed signals select the whole catalog.
func readFilter(r *http.Request) catalog.Filter {
	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		slog.Debug("read filter signals", "error", err)
	}
	return signals.filter()
}

func bookIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

// BookHandler serves the catalog list, the detail overlay and the
// borrow/return commands over datastar SSE.
type BookHandler struct{}

// NewBookHandler creates a new BookHandler.
func NewBookHandler() *BookHandler {
	return &BookHandler{}
}

// HandleList re-renders the book list for the current search and category.
// GET /books
func (h *BookHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	controller := ControllerFromContext(r.Context())
	v := controller.Snapshot(readFilter(r))

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.BookList(v))
}

// HandleDetail opens the detail overlay for one book.
// GET /books/{id}
func (h *BookHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := bookIDFromPath(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	book, err := ControllerFromContext(r.Context()).Book(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("get book", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.BookDetail(book))
	sse.MarshalAndPatchSignals(map[string]any{"detailOpen": true})
}

// HandleBorrow lends a book to the session user.
// POST /books/{id}/borrow
func (h *BookHandler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	h.handleCirculation(w, r, (*service.Controller).Borrow, "borrow book")
}

// HandleReturn takes a book back from the session user.
// POST /books/{id}/return
func (h *BookHandler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	h.handleCirculation(w, r, (*service.Controller).Return, "return book")
}

type circulationCommand func(*service.Controller, context.Context, int64) (service.Outcome, error)

func (h *BookHandler) handleCirculation(w http.ResponseWriter, r *http.Request, command circulationCommand, action string) {
	id, err := bookIDFromPath(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	controller := ControllerFromContext(r.Context())
	filter := readFilter(r)

	out, err := command(controller, r.Context(), id)
	if err != nil {
		slog.Error(action, "book", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !out.Accepted {
		slog.Debug(action+" rejected", "book", id, "reason", out.Reason)
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.Flash(out.Message))
	sse.PatchElementTempl(view.BookList(controller.Snapshot(filter)))
	if out.PromptLogin {
		sse.MarshalAndPatchSignals(map[string]any{"loginOpen": true, "loginMessage": out.Message})
	}
}
