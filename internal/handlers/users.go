package handlers

import (
	"net/http"
	"strings"
)

type addUserRequest struct {
	Name string `json:"name"`
}

// AddUser registers a display name and returns the first token for a
// freshly allocated user id.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "user name must not be empty")
		return
	}
	if len([]rune(name)) > h.config.Game.MaxNameLength {
		writeError(w, http.StatusBadRequest, "user name is too long")
		return
	}

	info, err := h.auth.Register(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RefreshToken mints a new token for the identity behind the presented
// one, extending its lifetime.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-User-Token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-Token header")
		return
	}
	info, err := h.auth.Refresh(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, info)
}
