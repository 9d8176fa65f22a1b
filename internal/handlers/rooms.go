package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"sternhalma/internal/game"
)

type createRoomRequest struct {
	RoomName string `json:"room_name"`
}

type createRoomResponse struct {
	Room game.RoomDesc `json:"room"`
	URL  string        `json:"url"`
}

// CreateRoom registers a new lobby-phase room owned by the caller and
// returns its descriptor with the stream path to join it.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.RoomName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "room name must not be empty")
		return
	}
	if len([]rune(name)) > h.config.Game.MaxNameLength {
		writeError(w, http.StatusBadRequest, "room name is too long")
		return
	}

	room := h.store.CreateRoom(user.ID, name)
	writeJSON(w, http.StatusOK, createRoomResponse{
		Room: room.Desc(),
		URL:  "/sse/" + room.ID,
	})
}

// ListRooms returns all room descriptors, newest first.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Rooms())
}

type describeRoomResponse struct {
	Room *game.RoomDesc `json:"room"`
}

// DescribeRoom returns a single room descriptor, or a null room when the
// id is unknown.
func (h *Handler) DescribeRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeJSON(w, http.StatusOK, describeRoomResponse{Room: nil})
		return
	}
	desc := room.Desc()
	writeJSON(w, http.StatusOK, describeRoomResponse{Room: &desc})
}

// GetPlayers returns the roster of the room given by the room_id query
// parameter.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "missing room_id parameter")
		return
	}
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.PlayerDescs())
}

// GetGameState returns a snapshot of the board for the room given by the
// room_id query parameter.
func (h *Handler) GetGameState(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "missing room_id parameter")
		return
	}
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.GameSnapshot())
}

type qrWriteCloser struct{ io.Writer }

func (qrWriteCloser) Close() error { return nil }

// RoomQR renders a PNG QR code encoding the room's join link.
func (h *Handler) RoomQR(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	if _, err := h.store.GetRoom(roomID); err != nil {
		writeGameError(w, err)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	joinURL := fmt.Sprintf("%s://%s/room/%s", scheme, r.Host, roomID)

	qrc, err := qrcode.NewWith(joinURL,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	writer := standard.NewWithWriter(qrWriteCloser{w},
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(10),
	)
	if err := qrc.Save(writer); err != nil {
		// Headers already sent; nothing useful left to report.
		return
	}
}
