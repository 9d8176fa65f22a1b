// Package handlers contains all HTTP handlers for the game server.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"sternhalma/internal/auth"
	"sternhalma/internal/config"
	"sternhalma/internal/game"
	"sternhalma/internal/store"
	"sternhalma/internal/timer"
)

// Handler wires the room registry, token service and timer service into
// the HTTP layer.
type Handler struct {
	store  *store.MemoryStore
	auth   *auth.Service
	timers *timer.Service
	config *config.ServerConfig
}

// New creates a handler with its dependencies.
func New(s *store.MemoryStore, a *auth.Service, t *timer.Service, cfg *config.ServerConfig) *Handler {
	return &Handler{store: s, auth: a, timers: t, config: cfg}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Code: status, Message: message})
}

// writeGameError maps domain errors onto HTTP statuses. Path rejections
// get 406 so move clients can distinguish an illegal path from a bad
// request; everything else about room state is a 400.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidPath),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, game.ErrCellOccupied):
		writeError(w, http.StatusNotAcceptable, err.Error())
	case errors.Is(err, store.ErrRoomNotFound):
		writeError(w, http.StatusBadRequest, "room was not found")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// HealthCheck reports server liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
