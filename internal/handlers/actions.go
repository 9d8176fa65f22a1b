package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sternhalma/internal/game"
)

// Room update kinds accepted by UpdateRoom.
const (
	updateStart       = "Start"
	updateStop        = "Stop"
	updateColorChange = "ColorChange"
	updateLeave       = "Leave"
)

type updateRoomRequest struct {
	UpdateType string      `json:"update_type"`
	NewColor   *game.Color `json:"new_color,omitempty"`
}

type roomResponse struct {
	Room game.RoomDesc `json:"room"`
}

// UpdateRoom applies a lifecycle action to a room: starting or stopping
// the game, changing the caller's color, or leaving.
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	roomID := chi.URLParam(r, "room_id")
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	var req updateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.UpdateType {
	case updateStart:
		if err := room.Start(user.ID); err != nil {
			writeGameError(w, err)
			return
		}
		h.timers.Start(roomID)
	case updateStop:
		if err := room.Stop(user.ID); err != nil {
			writeGameError(w, err)
			return
		}
		h.timers.Cancel(roomID)
	case updateColorChange:
		if req.NewColor == nil {
			writeError(w, http.StatusBadRequest, "new_color is required for ColorChange")
			return
		}
		if err := room.SetColor(user.ID, *req.NewColor); err != nil {
			writeGameError(w, err)
			return
		}
	case updateLeave:
		if err := room.Leave(user.ID); err != nil {
			writeGameError(w, err)
			return
		}
		if _, active := room.ActiveUserID(); active {
			h.timers.Start(roomID)
		} else {
			h.timers.Cancel(roomID)
		}
		h.store.DeleteIfAbandoned(roomID)
	default:
		writeError(w, http.StatusBadRequest, "unknown update_type")
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{Room: room.Desc()})
}

type moveRequest struct {
	Path          []game.Cell `json:"path"`
	CalculatePath bool        `json:"calculate_path"`
}

// MakeMove applies a move for the caller and manages the move deadline:
// re-armed for the next player, or cancelled when the move wins the game.
func (h *Handler) MakeMove(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	roomID := chi.URLParam(r, "room_id")
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev, err := room.MakeMove(user.ID, req.Path)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if ev.GameFinished {
		h.timers.Cancel(roomID)
	} else {
		h.timers.Reset(roomID)
	}
	writeJSON(w, http.StatusOK, ev)
}

type chatRequest struct {
	Message  *string `json:"message,omitempty"`
	SetReady *bool   `json:"set_ready,omitempty"`
}

// Chat broadcasts a chat line and/or flips the caller's ready flag.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	roomID := chi.URLParam(r, "room_id")
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == nil && req.SetReady == nil {
		writeError(w, http.StatusBadRequest, "message or set_ready is required")
		return
	}

	if err := room.Chat(user.ID, req.Message, req.SetReady); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// ValidatePath dry-runs a path against the room's board without moving
// anything. An illegal path gets a 406.
func (h *Handler) ValidatePath(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	var path []game.Cell
	if err := decodeJSON(r, &path); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := room.ValidatePath(path); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}
