package view_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/service"
	"github.com/msomdec/bookshelf/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func borrowed(id int64, title, by string) domain.Book {
	due := time.Date(2024, time.April, 13, 0, 0, 0, 0, time.UTC)
	return domain.Book{ID: id, Title: title, Author: "A", Category: domain.CategoryScience, IsBorrowed: true, Borrower: &by, DueDate: &due}
}

func TestBookList_ButtonsFollowBorrowState(t *testing.T) {
	v := service.View{
		Username: "alice",
		Books: []domain.Book{
			{ID: 1, Title: "Free Book", Author: "A", Category: domain.CategoryFiction},
			borrowed(2, "Mine", "alice"),
			borrowed(3, "Theirs", "bob"),
		},
	}

	html := render(t, view.BookList(v))

	tests := []struct {
		name string
		want string
	}{
		{"available", `data-on:click__stop="@post(&#39;/books/1/borrow&#39;)"`},
		{"own loan", `/books/2/return`},
		{"return confirm", `Return \&#34;Mine\&#34;?`},
		{"someone else's loan", `disabled title="Already borrowed by bob"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(html, tt.want) {
				t.Fatalf("expected %q in\n%s", tt.want, html)
			}
		})
	}
	if strings.Contains(html, "/books/3/return") {
		t.Fatal("book borrowed by someone else must not offer return")
	}
}

func TestBookList_LoggedOutSeesDisabledBorrow(t *testing.T) {
	html := render(t, view.BookList(service.View{Books: []domain.Book{borrowed(2, "Mine", "alice")}}))
	if !strings.Contains(html, "Already borrowed by alice") || strings.Contains(html, "/return") {
		t.Fatalf("unexpected card: %s", html)
	}
}

func TestBookList_Empty(t *testing.T) {
	html := render(t, view.BookList(service.View{}))
	if !strings.Contains(html, `id="book-list"`) || !strings.Contains(html, "No books match") {
		t.Fatalf("unexpected empty list: %s", html)
	}
}

func TestBookList_EscapesText(t *testing.T) {
	html := render(t, view.BookList(service.View{Books: []domain.Book{{ID: 1, Title: "<b>x</b>", Author: "A&B"}}}))
	if strings.Contains(html, "<b>x</b>") || !strings.Contains(html, "A&amp;B") {
		t.Fatalf("expected escaped output: %s", html)
	}
}

func TestBookDetail(t *testing.T) {
	b := borrowed(3, "Theirs", "bob")
	b.ISBN = "978-1-23123456"
	b.Year = 2001

	html := render(t, view.BookDetail(b))
	for _, want := range []string{`id="book-detail"`, "Theirs", "978-1-23123456", "2001", "Borrowed by bob until 2024-04-13"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}

	if got := view.Status(domain.Book{}); got != "Available" {
		t.Fatalf("Status = %q, want Available", got)
	}
}

func TestCategorySelect_AllFirst(t *testing.T) {
	html := render(t, view.CategorySelect([]domain.Category{domain.CategoryHistory, domain.CategoryFiction}, "Fiction"))

	all := strings.Index(html, `value="all"`)
	history := strings.Index(html, `value="History"`)
	fiction := strings.Index(html, `value="Fiction"`)
	if all < 0 || all > history || history > fiction {
		t.Fatalf("unexpected option order: %s", html)
	}
	if !strings.Contains(html, `value="Fiction" selected`) {
		t.Fatalf("expected Fiction selected: %s", html)
	}
}

func TestSessionIndicator(t *testing.T) {
	if html := render(t, view.SessionIndicator("")); !strings.Contains(html, "login-button") {
		t.Fatalf("expected login button: %s", html)
	}
	html := render(t, view.SessionIndicator("alice"))
	if !strings.Contains(html, "Hello, alice") || !strings.Contains(html, "logout-button") {
		t.Fatalf("expected greeting and logout: %s", html)
	}
}

func TestHomePage(t *testing.T) {
	books := catalog.Generate(catalog.NewRand(1), 4)
	store := catalog.NewStore(books)
	v := service.View{Books: store.All(), Categories: store.Categories(), Total: store.Len()}

	html := render(t, view.HomePage(v))
	for _, want := range []string{"<!doctype html>", `id="search"`, `id="category"`, `id="book-list"`, `id="login-form"`, `id="detail-overlay"`, "datastar"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in home page", want)
		}
	}
	if strings.Count(html, `class="book"`) != 4 {
		t.Fatalf("expected 4 cards")
	}
}

func TestHomePage_DetailOverlayClosesOnBackdrop(t *testing.T) {
	html := render(t, view.HomePage(service.View{}))

	start := strings.Index(html, `<div id="detail-overlay"`)
	if start < 0 {
		t.Fatal("expected detail overlay")
	}
	tag := html[start : start+strings.Index(html[start:], ">")]
	if !strings.Contains(tag, `data-on:click__self="$detailOpen = false"`) {
		t.Fatalf("expected backdrop click to close the overlay: %s", tag)
	}

	login := html[strings.Index(html, `<div id="login-overlay"`):]
	login = login[:strings.Index(login, ">")]
	if strings.Contains(login, "__self") {
		t.Fatalf("login overlay must stay open on backdrop clicks: %s", login)
	}
}

func TestErrorPage(t *testing.T) {
	html := render(t, view.ErrorPage(404, "Page not found."))
	if !strings.Contains(html, "404") || !strings.Contains(html, "Page not found.") {
		t.Fatalf("unexpected error page: %s", html)
	}
}
