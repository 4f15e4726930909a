package catalog

import (
	"strings"

	"github.com/msomdec/bookshelf/internal/domain"
)

// Filter selects the visible subset of the catalog.
type Filter struct {
	Search   string
	Category string // A category name, or domain.AllCategories / "" for no filter.
}

// Matches reports whether b is visible under f: the category must match
// (unless unfiltered) and the search term must be a case-insensitive
// substring of the title or the author.
func (f Filter) Matches(b *domain.Book) bool {
	if f.Category != "" && f.Category != domain.AllCategories && string(b.Category) != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	search := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(b.Title), search) ||
		strings.Contains(strings.ToLower(b.Author), search)
}
