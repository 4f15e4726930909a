package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/bookshelf/internal/view"
)

// loginForm is the login overlay's form. The hidden search and category
// fields carry the page filter so the list can be re-rendered.
type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Search   string
	Category string
}

const emptyCredentialsMessage = "Please enter both username and password."

// AuthHandler handles login and logout from the login overlay.
type AuthHandler struct {
	validate *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{validate: validator.New()}
}

// HandleLogin authenticates, or registers, the submitted username.
// POST /login (form encoded)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: strings.TrimSpace(r.FormValue("password")),
		Search:   r.FormValue("search"),
		Category: r.FormValue("category"),
	}

	if err := h.validate.Struct(form); err != nil {
		slog.Debug("login form rejected", "error", err)
		sse := datastar.NewSSE(w, r)
		sse.MarshalAndPatchSignals(map[string]any{"loginMessage": emptyCredentialsMessage})
		return
	}

	controller := ControllerFromContext(r.Context())
	out, err := controller.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		slog.Error("login user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if !out.Accepted {
		sse.MarshalAndPatchSignals(map[string]any{"loginMessage": out.Message})
		return
	}

	filter := filterSignals{Search: form.Search, Category: form.Category}.filter()
	sse.MarshalAndPatchSignals(map[string]any{"loginOpen": false, "loginMessage": ""})
	sse.PatchElementTempl(view.LoginForm())
	sse.PatchElementTempl(view.SessionIndicator(controller.Username()))
	sse.PatchElementTempl(view.Flash(out.Message))
	sse.PatchElementTempl(view.BookList(controller.Snapshot(filter)))
}

// HandleLogout ends the session.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	controller := ControllerFromContext(r.Context())
	filter := readFilter(r)

	if _, err := controller.Logout(r.Context()); err != nil {
		slog.Error("logout user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.SessionIndicator(""))
	sse.PatchElementTempl(view.Flash(""))
	sse.PatchElementTempl(view.BookList(controller.Snapshot(filter)))
}
