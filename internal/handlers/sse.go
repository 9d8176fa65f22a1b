package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sternhalma/internal/game"
)

// StreamRoom is the SSE endpoint joining a player to a room. The token
// travels in the path because EventSource cannot set headers. The join
// happens before the first byte of the stream; closing the stream runs
// the leave logic unless a reconnection has already rebound the player.
func (h *Handler) StreamRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	token := chi.URLParam(r, "token")

	user, err := h.auth.Authenticate(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	queue := game.NewEventQueue()
	if err := room.Join(user.ID, user.Name, queue); err != nil {
		writeGameError(w, err)
		return
	}
	log.Printf("room %s: user %d (%s) connected", roomID, user.ID, user.Name)

	defer func() {
		queue.Close()
		if err := room.LeaveIfAttached(user.ID, queue); err != nil {
			log.Printf("room %s: leave for user %d failed: %v", roomID, user.ID, err)
		}
		h.store.DeleteIfAbandoned(roomID)
		log.Printf("room %s: user %d disconnected", roomID, user.ID)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(h.config.Game.KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-queue.Notify():
			for _, frame := range queue.Drain() {
				if err := writeFrame(w, frame); err != nil {
					return
				}
			}
			flusher.Flush()
			// Leave or eviction closes the queue; unwind the stream.
			if queue.Closed() {
				return
			}
		}
	}
}

func writeFrame(w io.Writer, f game.Frame) error {
	if f.Event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", f.Event); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", f.Data)
	return err
}
