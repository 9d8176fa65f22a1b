package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sternhalma/internal/game"
)

// readEvent scans the stream until one data frame arrives.
func readEvent(t *testing.T, scanner *bufio.Scanner) string {
	t.Helper()
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimPrefix(line, "data: ")
		}
	}
	t.Fatalf("Stream ended before a data frame: %v", scanner.Err())
	return ""
}

func TestStreamRoom(t *testing.T) {
	h, router := newTestHandler(t)
	server := httptest.NewServer(router)
	defer server.Close()

	alice := registerUser(t, router, "alice")
	desc := createRoom(t, router, alice.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		server.URL+"/sse/"+desc.ID+"/"+alice.Token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var joined game.PlayerJoined
	require.NoError(t, json.Unmarshal([]byte(readEvent(t, scanner)), &joined))
	assert.Equal(t, "player_joined", joined.Name)
	assert.Equal(t, alice.UserID, joined.UserID)
	assert.Equal(t, desc.ID, joined.RoomID)
	assert.Len(t, joined.PlayerCones, 15)

	// A broadcast while connected arrives on the stream.
	room, err := h.store.GetRoom(desc.ID)
	require.NoError(t, err)
	msg := "hello"
	require.NoError(t, room.Chat(alice.UserID, &msg, nil))

	var chat game.ChatMessage
	require.NoError(t, json.Unmarshal([]byte(readEvent(t, scanner)), &chat))
	assert.Equal(t, "chat_message", chat.Name)
	require.NotNil(t, chat.Message)
	assert.Equal(t, msg, *chat.Message)

	// Dropping the connection runs the leave logic.
	cancel()
	deadline := time.After(2 * time.Second)
	for room.PlayerCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("Player was not removed after the stream closed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStreamRoomRejections(t *testing.T) {
	_, router := newTestHandler(t)
	alice := registerUser(t, router, "alice")
	desc := createRoom(t, router, alice.Token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse/"+desc.ID+"/garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse/unknown/"+alice.Token, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
