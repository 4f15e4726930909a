package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/msomdec/bookshelf/internal/handler"
	"github.com/msomdec/bookshelf/internal/repository/memory"
	"github.com/msomdec/bookshelf/internal/service"
)

const testProfileSecret = "test-secret-for-handler-tests-0123456789"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	profiles := service.NewProfileService(memory.NewStorage(), testProfileSecret, service.ProfileConfig{
		CatalogSize: 20,
		CatalogSeed: 99,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, profiles, false)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// call performs a request and returns the status and body.
func call(t *testing.T, client *http.Client, method, target, contentType, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Datastar-Request", "true")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(data)
}

func postSignals(t *testing.T, client *http.Client, target string) string {
	t.Helper()
	status, body := call(t, client, http.MethodPost, target, "application/json", `{"search":"","category":"all"}`)
	if status != http.StatusOK {
		t.Fatalf("POST %s: expected 200, got %d: %s", target, status, body)
	}
	return body
}

func postLogin(t *testing.T, client *http.Client, base, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}, "category": {"all"}}
	status, body := call(t, client, http.MethodPost, base+"/login", "application/x-www-form-urlencoded", form.Encode())
	if status != http.StatusOK {
		t.Fatalf("POST /login: expected 200, got %d: %s", status, body)
	}
	return body
}

func getJSON(t *testing.T, client *http.Client, target string, dst any) int {
	t.Helper()
	resp, err := client.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return resp.StatusCode
}

func expectContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in response:\n%s", want, body)
		}
	}
}

type sessionResponse struct {
	Session handler.SessionDTO `json:"session"`
}

type bookResponse struct {
	Book handler.BookDTO `json:"book"`
}

func TestIntegration_LoginBorrowReturnLogout(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// 1. The home page issues a profile and renders the catalog logged out.
	status, body := call(t, client, http.MethodGet, srv.URL+"/", "", "")
	if status != http.StatusOK {
		t.Fatalf("GET /: expected 200, got %d", status)
	}
	expectContains(t, body, `id="login-button"`, `id="book-3"`)

	srvURL, _ := url.Parse(srv.URL)
	var hasProfile bool
	for _, c := range client.Jar.Cookies(srvURL) {
		if c.Name == handler.ProfileCookie {
			hasProfile = true
		}
	}
	if !hasProfile {
		t.Fatal("expected profile cookie to be set")
	}

	// 2. Borrowing while logged out prompts for login.
	body = postSignals(t, client, srv.URL+"/books/3/borrow")
	expectContains(t, body, "You must be logged in to borrow books.", `"loginOpen":true`)

	// 3. Login registers alice.
	body = postLogin(t, client, srv.URL, "alice", "pw1")
	expectContains(t, body, "Welcome, alice!", "Hello, alice", `"loginOpen":false`)

	// 4. Borrow book 3.
	body = postSignals(t, client, srv.URL+"/books/3/borrow")
	expectContains(t, body, "Book borrowed by alice. Due date: ", "/books/3/return")

	var session sessionResponse
	if status := getJSON(t, client, srv.URL+"/api/session", &session); status != http.StatusOK {
		t.Fatalf("GET /api/session: expected 200, got %d", status)
	}
	if !session.Session.LoggedIn || session.Session.Username != "alice" || len(session.Session.BorrowedBooks) != 1 || session.Session.BorrowedBooks[0] != 3 {
		t.Fatalf("unexpected session: %+v", session.Session)
	}

	var book bookResponse
	if status := getJSON(t, client, srv.URL+"/api/books/3", &book); status != http.StatusOK {
		t.Fatalf("GET /api/books/3: expected 200, got %d", status)
	}
	if !book.Book.IsBorrowed || book.Book.Borrower == nil || *book.Book.Borrower != "alice" || book.Book.DueDate == nil {
		t.Fatalf("unexpected book: %+v", book.Book)
	}

	// 5. Borrowing again is rejected.
	body = postSignals(t, client, srv.URL+"/books/3/borrow")
	expectContains(t, body, "This book is already borrowed.")

	// 6. Return it.
	body = postSignals(t, client, srv.URL+"/books/3/return")
	expectContains(t, body, "Thank you for returning")

	if status := getJSON(t, client, srv.URL+"/api/books/3", &book); status != http.StatusOK {
		t.Fatalf("GET /api/books/3: expected 200, got %d", status)
	}
	if book.Book.IsBorrowed || book.Book.Borrower != nil || book.Book.DueDate != nil || len(book.Book.History) != 2 {
		t.Fatalf("unexpected book after return: %+v", book.Book)
	}

	// 7. Logout.
	body = postSignals(t, client, srv.URL+"/logout")
	expectContains(t, body, `id="login-button"`)

	if status := getJSON(t, client, srv.URL+"/api/session", &session); status != http.StatusOK {
		t.Fatalf("GET /api/session: expected 200, got %d", status)
	}
	if session.Session.LoggedIn {
		t.Fatalf("expected logged out session: %+v", session.Session)
	}
}

func TestIntegration_LoginRejections(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	postLogin(t, client, srv.URL, "alice", "pw1")
	postSignals(t, client, srv.URL+"/logout")

	body := postLogin(t, client, srv.URL, "alice", "wrong")
	expectContains(t, body, "Incorrect password.")

	body = postLogin(t, client, srv.URL, "  ", "pw1")
	expectContains(t, body, "Please enter both username and password.")

	var session sessionResponse
	getJSON(t, client, srv.URL+"/api/session", &session)
	if session.Session.LoggedIn {
		t.Fatalf("expected no session after rejected logins: %+v", session.Session)
	}
}

func TestIntegration_LongUsernameRegisters(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	username := strings.Repeat("a", 129)
	body := postLogin(t, client, srv.URL, username, "pw1")
	if strings.Contains(body, "Please enter both username and password.") {
		t.Fatalf("long username rejected as empty: %s", body)
	}

	var session sessionResponse
	getJSON(t, client, srv.URL+"/api/session", &session)
	if !session.Session.LoggedIn || session.Session.Username != username {
		t.Fatalf("expected %d-char user logged in, got %+v", len(username), session.Session)
	}
}

func TestIntegration_ReturnByAnotherUser(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	postLogin(t, client, srv.URL, "alice", "pw1")
	postSignals(t, client, srv.URL+"/books/3/borrow")
	postLogin(t, client, srv.URL, "bob", "pw2")

	body := postSignals(t, client, srv.URL+"/books/3/return")
	expectContains(t, body, "You can only return books you borrowed.", "Already borrowed by alice")

	var book bookResponse
	getJSON(t, client, srv.URL+"/api/books/3", &book)
	if book.Book.Borrower == nil || *book.Book.Borrower != "alice" {
		t.Fatalf("expected book 3 still with alice: %+v", book.Book)
	}
}

func TestIntegration_ProfilesAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	first := newClient(t)
	second := newClient(t)

	postLogin(t, first, srv.URL, "alice", "pw1")

	var session sessionResponse
	getJSON(t, second, srv.URL+"/api/session", &session)
	if session.Session.LoggedIn {
		t.Fatalf("expected a separate profile to be logged out: %+v", session.Session)
	}

	getJSON(t, first, srv.URL+"/api/session", &session)
	if session.Session.Username != "alice" {
		t.Fatalf("expected alice on the first profile: %+v", session.Session)
	}
}

func TestIntegration_FilterList(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	signals := url.QueryEscape(`{"search":"no-such-book","category":"all"}`)
	status, body := call(t, client, http.MethodGet, srv.URL+"/books?datastar="+signals, "", "")
	if status != http.StatusOK {
		t.Fatalf("GET /books: expected 200, got %d", status)
	}
	expectContains(t, body, `id="book-list"`, "No books match your search.")

	var list struct {
		Books []handler.BookDTO `json:"books"`
		Total int               `json:"total"`
	}
	if status := getJSON(t, client, srv.URL+"/api/books", &list); status != http.StatusOK {
		t.Fatalf("GET /api/books: expected 200, got %d", status)
	}
	if len(list.Books) != 20 || list.Total != 20 {
		t.Fatalf("expected all 20 books, got %d of %d", len(list.Books), list.Total)
	}

	category := list.Books[0].Category
	want := 0
	for _, b := range list.Books {
		if b.Category == category {
			want++
		}
	}
	getJSON(t, client, srv.URL+"/api/books?category="+url.QueryEscape(category), &list)
	if len(list.Books) != want {
		t.Fatalf("expected %d %s books, got %d", want, category, len(list.Books))
	}
	for _, b := range list.Books {
		if b.Category != category {
			t.Fatalf("unexpected category %s in %s filter", b.Category, category)
		}
	}

	author := strings.ToUpper(list.Books[0].Author)
	getJSON(t, client, srv.URL+"/api/books?search="+url.QueryEscape(author), &list)
	if len(list.Books) == 0 {
		t.Fatalf("expected case-insensitive author match for %q", author)
	}
}

func TestIntegration_Detail(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	status, body := call(t, client, http.MethodGet, srv.URL+"/books/5", "", "")
	if status != http.StatusOK {
		t.Fatalf("GET /books/5: expected 200, got %d", status)
	}
	expectContains(t, body, `id="book-detail"`, "Status:", "Available", `"detailOpen":true`)

	tests := []struct {
		target string
		status int
	}{
		{"/books/999", http.StatusNotFound},
		{"/books/abc", http.StatusBadRequest},
		{"/api/books/999", http.StatusNotFound},
		{"/api/books/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if status, _ := call(t, client, http.MethodGet, srv.URL+tt.target, "", ""); status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
		})
	}
}
