package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/msomdec/bookshelf/internal/service"
)

// ProfileCookie holds the signed profile token.
const ProfileCookie = "profile_token"

const profileCookieMaxAge = 365 * 24 * 60 * 60

type contextKey string

const controllerContextKey contextKey = "controller"

// ControllerFromContext extracts the profile's controller from the request
// context. Returns nil outside WithProfile.
func ControllerFromContext(ctx context.Context) *service.Controller {
	c, _ := ctx.Value(controllerContextKey).(*service.Controller)
	return c
}

// WithProfile is middleware that resolves the browser profile from the
// profile_token cookie, issuing a new profile when the cookie is missing or
// invalid, and injects the profile's controller into the request context.
func WithProfile(profiles *service.ProfileService, cookieSecure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profileID := ""
		if cookie, err := r.Cookie(ProfileCookie); err == nil {
			if id, err := profiles.ValidateToken(cookie.Value); err == nil {
				profileID = id
			}
		}

		if profileID == "" {
			id, token, err := profiles.NewProfile()
			if err != nil {
				slog.Error("issue profile", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			profileID = id
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   cookieSecure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   profileCookieMaxAge,
			})
			slog.Debug("profile issued", "profile", profileID)
		}

		controller, err := profiles.Controller(r.Context(), profileID)
		if err != nil {
			slog.Error("load profile", "profile", profileID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), controllerContextKey, controller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders sets conservative browser security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
