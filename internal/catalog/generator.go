// Package catalog generates the fixed book collection and answers the
// search/category queries the book list is rendered from.
package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/msomdec/bookshelf/internal/domain"
)

// DefaultSize is the number of books a catalog holds unless configured otherwise.
const DefaultSize = 100

var sampleTitles = []string{
	"The Silent Dawn", "Echoes of Eternity", "Quantum Leap", "Shadows of the Past",
	"The Last Kingdom", "Mindset Mastery", "Code of the Ancients", "Infinite Loop",
	"Beyond the Horizon", "The Art of War", "Unseen Realities", "Journey to the Stars",
	"The Forgotten Tales", "Rise of the Phoenix", "Legacy of the Brave", "Fragments of Time",
}

var sampleAuthors = []string{
	"John Smith", "Alice Johnson", "Robert Brown", "Emily Davis",
	"Michael Miller", "Sarah Wilson", "David Moore", "Laura Taylor",
	"James Anderson", "Linda Thomas",
}

// Generate returns n books with ids 1..n drawn from the fixed title, author
// and category pools. Every book starts available with an empty history.
func Generate(rng *rand.Rand, n int) []domain.Book {
	books := make([]domain.Book, 0, n)
	for i := range n {
		id := int64(i + 1)
		title := fmt.Sprintf("%s %d", pick(rng, sampleTitles), id)
		author := pick(rng, sampleAuthors)
		category := pick(rng, domain.Categories)

		books = append(books, domain.Book{
			ID:          id,
			Title:       title,
			Author:      author,
			Category:    category,
			Year:        1990 + rng.IntN(30),
			ISBN:        fmt.Sprintf("978-1-23%d", 100000+rng.IntN(900000)),
			Description: fmt.Sprintf("A fascinating book titled \"%s\" by %s in the genre %s. A must-read!", title, author, category),
			History:     []domain.HistoryEntry{},
		})
	}
	return books
}

// NewRand returns the random source for Generate. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func pick[T any](rng *rand.Rand, pool []T) T {
	return pool[rng.IntN(len(pool))]
}
