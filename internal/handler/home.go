package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/view"
)

// HandleHome renders the full catalog page.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		view.ErrorPage(http.StatusNotFound, "Page not found.").Render(r.Context(), w)
		return
	}

	controller := ControllerFromContext(r.Context())
	if controller == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v := controller.Snapshot(catalog.Filter{Category: domain.AllCategories})
	if err := view.HomePage(v).Render(r.Context(), w); err != nil {
		slog.Error("render home page", "error", err)
	}
}
