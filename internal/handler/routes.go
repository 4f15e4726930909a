package handler

import (
	"net/http"

	"github.com/msomdec/bookshelf/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, profiles *service.ProfileService, cookieSecure bool) {
	withProfile := func(h http.HandlerFunc) http.Handler {
		return WithProfile(profiles, cookieSecure, h)
	}

	books := NewBookHandler()
	auth := NewAuthHandler()
	api := NewAPIHandler()

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /", withProfile(HandleHome))
	mux.Handle("GET /books", withProfile(books.HandleList))
	mux.Handle("GET /books/{id}", withProfile(books.HandleDetail))
	mux.Handle("POST /books/{id}/borrow", withProfile(books.HandleBorrow))
	mux.Handle("POST /books/{id}/return", withProfile(books.HandleReturn))

	mux.Handle("POST /login", withProfile(auth.HandleLogin))
	mux.Handle("POST /logout", withProfile(auth.HandleLogout))

	mux.Handle("GET /api/books", withProfile(api.HandleListBooks))
	mux.Handle("GET /api/books/{id}", withProfile(api.HandleGetBook))
	mux.Handle("GET /api/session", withProfile(api.HandleSession))
}
