package handlers

import (
	"context"
	"net/http"

	"sternhalma/internal/auth"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticated verifies the X-User-Token header and stores the caller's
// identity in the request context.
func (h *Handler) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-User-Token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-Token header")
			return
		}
		user, err := h.auth.Authenticate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFrom extracts the authenticated user placed by Authenticated.
func userFrom(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userContextKey).(auth.User)
	return user, ok
}
