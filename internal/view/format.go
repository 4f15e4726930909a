// Package view renders the catalog page and the fragments patched into it
// over datastar SSE. Components are generated from the .templ files in
// this directory; run `templ generate` after editing them.
package view

import (
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/msomdec/bookshelf/internal/domain"
)

// Signals seeded on the page. search and category are read back by every
// list request.
const pageSignals = `{"search":"","category":"all","dark":false,"loginOpen":false,"loginMessage":"","detailOpen":false}`

// Status is the availability line of the detail overlay.
func Status(b domain.Book) string {
	if !b.IsBorrowed || b.Borrower == nil {
		return "Available"
	}
	return fmt.Sprintf("Borrowed by %s until %s", *b.Borrower, b.DueDateString())
}

func bookPath(id int64) string {
	return "/books/" + strconv.FormatInt(id, 10)
}

func borrowerName(b *domain.Book) string {
	if b.Borrower == nil {
		return ""
	}
	return *b.Borrower
}

// returnAction asks for confirmation before posting the return.
func returnAction(b *domain.Book) string {
	return fmt.Sprintf("confirm(%s) && @post('%s/return')", jsString(fmt.Sprintf(`Return "%s"?`, b.Title)), bookPath(b.ID))
}

func selectedCategory(selected string) string {
	if selected == "" {
		return domain.AllCategories
	}
	return selected
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	quoted, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(s)
	if err != nil {
		return `""`
	}
	return quoted
}
