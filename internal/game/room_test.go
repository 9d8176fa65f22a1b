package game

import (
	"encoding/json"
	"testing"
	"time"
)

// drainNames decodes the name discriminator of every buffered frame,
// skipping liveness probes.
func drainNames(t *testing.T, q *EventQueue) []string {
	t.Helper()
	var names []string
	for _, f := range q.Drain() {
		if f.Event != "" {
			continue
		}
		var probe struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(f.Data, &probe); err != nil {
			t.Fatalf("Bad event payload %q: %v", f.Data, err)
		}
		names = append(names, probe.Name)
	}
	return names
}

func lastEvent(t *testing.T, q *EventQueue, v interface{}) {
	t.Helper()
	frames := q.Drain()
	if len(frames) == 0 {
		t.Fatal("No buffered frames")
	}
	if err := json.Unmarshal(frames[len(frames)-1].Data, v); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
}

func joinPlayers(t *testing.T, room *Room, userIDs ...int) map[int]*EventQueue {
	t.Helper()
	queues := make(map[int]*EventQueue)
	for _, id := range userIDs {
		q := NewEventQueue()
		if err := room.Join(id, "player", q); err != nil {
			t.Fatalf("Join %d failed: %v", id, err)
		}
		queues[id] = q
	}
	return queues
}

func readyAndStart(t *testing.T, room *Room, queues map[int]*EventQueue) {
	t.Helper()
	ready := true
	for id := range queues {
		if err := room.Chat(id, nil, &ready); err != nil {
			t.Fatalf("Ready %d failed: %v", id, err)
		}
	}
	if err := room.Start(room.CreatedBy); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestRoom_JoinAssignsColors(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)

	if room.Game.ColorOf(1) != Purple {
		t.Errorf("First joiner should get purple, got %s", room.Game.ColorOf(1))
	}
	if room.Game.ColorOf(2) != Green {
		t.Errorf("Second joiner should get green, got %s", room.Game.ColorOf(2))
	}
	if room.CreatedBy != 1 {
		t.Errorf("First joiner should own the room, got %d", room.CreatedBy)
	}

	// Player 1 saw both joins, player 2 only their own.
	names := drainNames(t, queues[1])
	if len(names) != 2 || names[0] != "player_joined" || names[1] != "player_joined" {
		t.Errorf("Unexpected events for player 1: %v", names)
	}
	if names := drainNames(t, queues[2]); len(names) != 1 {
		t.Errorf("Unexpected events for player 2: %v", names)
	}
}

func TestRoom_JoinRebindsStream(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	q1 := NewEventQueue()
	if err := room.Join(1, "alice", q1); err != nil {
		t.Fatal(err)
	}
	ready := true
	if err := room.Chat(1, nil, &ready); err != nil {
		t.Fatal(err)
	}

	q2 := NewEventQueue()
	if err := room.Join(1, "alice", q2); err != nil {
		t.Fatalf("Rejoin failed: %v", err)
	}
	if room.PlayerCount() != 1 {
		t.Errorf("Rejoin must not duplicate the player, got %d", room.PlayerCount())
	}
	if !q1.Closed() {
		t.Error("Replaced queue should be closed")
	}

	var ev PlayerJoined
	lastEvent(t, q2, &ev)
	if !ev.PlayerReady {
		t.Error("Ready flag must survive a reconnect")
	}
	if ev.PlayerColor != Purple {
		t.Errorf("Color must survive a reconnect, got %s", ev.PlayerColor)
	}

	// The old stream's teardown is a no-op after the rebind.
	if err := room.LeaveIfAttached(1, q1); err != nil {
		t.Errorf("Stale teardown returned %v", err)
	}
	if room.PlayerCount() != 1 {
		t.Error("Stale teardown must not remove the player")
	}
}

func TestRoom_JoinLimits(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	joinPlayers(t, room, 1, 2, 3, 4, 5, 6)

	if err := room.Join(7, "late", NewEventQueue()); err != ErrRoomFull {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
}

func TestRoom_JoinAfterStart(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)
	readyAndStart(t, room, queues)

	if err := room.Join(3, "late", NewEventQueue()); err != ErrGameStarted {
		t.Errorf("Expected ErrGameStarted, got %v", err)
	}
	// A member may reconnect mid-game.
	if err := room.Join(2, "player", NewEventQueue()); err != nil {
		t.Errorf("Member reconnect failed: %v", err)
	}
}

func TestRoom_SetColor(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)

	if err := room.SetColor(1, Green); err != ErrColorTaken {
		t.Errorf("Expected ErrColorTaken, got %v", err)
	}
	if room.Game.ColorOf(1) != Purple {
		t.Error("Rejected color change must keep the old color")
	}

	if err := room.SetColor(1, Blue); err != nil {
		t.Fatalf("SetColor failed: %v", err)
	}
	if room.Game.ColorOf(1) != Blue {
		t.Errorf("Expected blue, got %s", room.Game.ColorOf(1))
	}
	if len(room.Game.PlayerCones(1)) != 15 {
		t.Error("Cones must follow the color change")
	}

	var ev GameStateUpdate
	lastEvent(t, queues[2], &ev)
	if ev.Name != "game_state" {
		t.Errorf("Expected game_state broadcast, got %s", ev.Name)
	}

	ready := true
	if err := room.Chat(1, nil, &ready); err != nil {
		t.Fatal(err)
	}
	if err := room.SetColor(1, Orange); err != ErrPlayerReady {
		t.Errorf("Expected ErrPlayerReady, got %v", err)
	}
}

func TestRoom_ChatReflectsNewReadyState(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1)

	msg := "here we go"
	ready := true
	if err := room.Chat(1, &msg, &ready); err != nil {
		t.Fatal(err)
	}

	var ev ChatMessage
	lastEvent(t, queues[1], &ev)
	if ev.Message == nil || *ev.Message != msg {
		t.Error("Chat message lost")
	}
	if ev.Ready == nil || !*ev.Ready {
		t.Error("Broadcast must carry the new ready state")
	}
	if err := room.Chat(99, &msg, nil); err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestRoom_StartRequiresCreatorAndReady(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)

	if err := room.Start(2); err != ErrNotCreator {
		t.Errorf("Expected ErrNotCreator, got %v", err)
	}
	if err := room.Start(1); err != ErrNotReady {
		t.Errorf("Expected ErrNotReady, got %v", err)
	}

	readyAndStart(t, room, queues)
	if !room.GameStarted {
		t.Error("Game should be started")
	}
	if err := room.Start(1); err != ErrGameStarted {
		t.Errorf("Expected ErrGameStarted, got %v", err)
	}

	var ev RoomStateUpdate
	lastEvent(t, queues[2], &ev)
	if ev.Name != "room_state_update" || !ev.Room.GameStarted {
		t.Errorf("Bad start broadcast: %+v", ev)
	}

	if err := room.Stop(2); err != ErrNotCreator {
		t.Errorf("Expected ErrNotCreator, got %v", err)
	}
	if err := room.Stop(1); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if room.GameStarted {
		t.Error("Game should be stopped")
	}
}

func TestRoom_MakeMoveRotatesTurn(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)

	if _, err := room.MakeMove(1, []Cell{{4, 4}, {5, 10}}); err != ErrGameNotActive {
		t.Errorf("Expected ErrGameNotActive, got %v", err)
	}

	readyAndStart(t, room, queues)

	if _, err := room.MakeMove(2, []Cell{{5, 11}, {5, 10}}); err != ErrNotYourTurn {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
	if _, err := room.MakeMove(1, []Cell{{5, 11}, {5, 10}}); err != ErrNotYourCone {
		t.Errorf("Expected ErrNotYourCone, got %v", err)
	}

	ev, err := room.MakeMove(1, []Cell{{4, 4}, {5, 10}})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if ev.NextPlayer != 1 || ev.GameFinished {
		t.Errorf("Bad move event: %+v", ev)
	}
	if room.ActivePlayer != 1 {
		t.Errorf("Turn should pass to index 1, got %d", room.ActivePlayer)
	}

	// Green's turn; moving brings the cursor back to index 0.
	if _, err := room.MakeMove(2, []Cell{{5, 11}, {5, 10}}); err != ErrInvalidPath {
		t.Errorf("Occupied destination must be rejected, got %v", err)
	}
	if _, err := room.MakeMove(2, []Cell{{5, 11}, {6, 10}}); err != nil {
		t.Fatalf("Green move failed: %v", err)
	}
	if room.ActivePlayer != 0 {
		t.Errorf("Turn should wrap to index 0, got %d", room.ActivePlayer)
	}
}

func TestRoom_WinnerDetection(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)
	if err := room.SetColor(2, Orange); err != nil {
		t.Fatal(err)
	}
	readyAndStart(t, room, queues)

	// Rebuild the board with every orange cone in blue's triangle except
	// one sitting a single step away from the last free home cell.
	room.Game.Cones = make(map[Cell]Color)
	last := Cell{9, 0}
	for _, cell := range HomeCells(Blue) {
		if cell == last {
			continue
		}
		if err := room.Game.AddCone(cell, Orange); err != nil {
			t.Fatal(err)
		}
	}
	if err := room.Game.AddCone(Cell{9, 1}, Orange); err != nil {
		t.Fatal(err)
	}
	room.ActivePlayer = 1

	ev, err := room.MakeMove(2, []Cell{{9, 1}, last})
	if err != nil {
		t.Fatalf("Winning move failed: %v", err)
	}
	if !ev.GameFinished {
		t.Error("Winning move must report game_finished")
	}
	if !room.GameFinished {
		t.Error("Room must flag the finished game")
	}
	if room.Winner == nil || *room.Winner != 2 {
		t.Errorf("Winner should be user 2, got %v", room.Winner)
	}

	// No moves after the game ended.
	if _, err := room.MakeMove(1, []Cell{{4, 4}, {5, 10}}); err != ErrGameNotActive {
		t.Errorf("Expected ErrGameNotActive, got %v", err)
	}
}

func TestRoom_LeaveClampsTurn(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2, 3)
	readyAndStart(t, room, queues)

	// Advance to the last player, then remove them.
	if _, err := room.MakeMove(1, []Cell{{4, 4}, {5, 10}}); err != nil {
		t.Fatal(err)
	}
	if _, err := room.MakeMove(2, []Cell{{5, 11}, {6, 10}}); err != nil {
		t.Fatal(err)
	}
	if room.ActivePlayer != 2 {
		t.Fatalf("Expected active index 2, got %d", room.ActivePlayer)
	}

	if err := room.Leave(3); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if room.ActivePlayer != 0 {
		t.Errorf("Active index should clamp to 0, got %d", room.ActivePlayer)
	}
	// Mid-game leave keeps the cones on the board.
	if room.Game.ColorOf(3) == Neutral {
		t.Error("Mid-game leave must keep the color assignment")
	}

	var ev PlayerLeft
	lastEvent(t, queues[1], &ev)
	if ev.Name != "player_left" || ev.RemoveCones {
		t.Errorf("Bad leave broadcast: %+v", ev)
	}
}

func TestRoom_LobbyLeaveReleasesColor(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)

	if err := room.Leave(2); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if room.Game.ColorOf(2) != Neutral {
		t.Error("Lobby leave must release the color")
	}
	if len(room.Game.Cones) != 15 {
		t.Errorf("Expected only player 1's cones, got %d", len(room.Game.Cones))
	}
	if q := queues[2]; !q.Closed() {
		t.Error("Leave must close the player's queue")
	}

	var ev PlayerLeft
	lastEvent(t, queues[1], &ev)
	if !ev.RemoveCones || ev.PlayerColor != Green {
		t.Errorf("Bad leave broadcast: %+v", ev)
	}
}

func TestRoom_AdvanceTurnOnTimeout(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)

	if _, again := room.AdvanceTurnOnTimeout(); again {
		t.Error("No timeout handling before the game starts")
	}

	readyAndStart(t, room, queues)
	userID, again := room.AdvanceTurnOnTimeout()
	if !again || userID != 2 {
		t.Errorf("Expected turn to pass to user 2, got %d, %v", userID, again)
	}

	var ev TurnChange
	lastEvent(t, queues[1], &ev)
	if ev.Name != "turn_change" || ev.TurnGoesTo != 1 {
		t.Errorf("Bad turn_change broadcast: %+v", ev)
	}
}

func TestRoom_SweepEvictsDeadPlayers(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	queues := joinPlayers(t, room, 1, 2)
	queues[2].Close()

	// First sweep refreshes player 1 and stamps no one else.
	if evicted := room.Sweep(time.Now(), time.Minute); evicted != nil {
		t.Errorf("Nothing should be evicted yet, got %v", evicted)
	}

	evicted := room.Sweep(time.Now().Add(2*time.Minute), time.Minute)
	if len(evicted) != 1 || evicted[0] != 2 {
		t.Errorf("Expected user 2 evicted, got %v", evicted)
	}
	if room.PlayerCount() != 1 {
		t.Errorf("Expected 1 player left, got %d", room.PlayerCount())
	}

	names := drainNames(t, queues[1])
	if len(names) == 0 || names[len(names)-1] != "player_left" {
		t.Errorf("Eviction must broadcast player_left, got %v", names)
	}
}

func TestRoom_StaleAndAbandoned(t *testing.T) {
	room := NewRoom("r1", 1, "test room")
	now := time.Now()

	if room.Stale(now, time.Minute) {
		t.Error("Fresh room must not be stale")
	}
	if !room.Stale(now.Add(2*time.Minute), time.Minute) {
		t.Error("Idle empty room must be stale")
	}

	if room.Abandoned() {
		t.Error("Room without a finished game is not abandoned")
	}
	room.GameFinished = true
	if !room.Abandoned() {
		t.Error("Empty room with a finished game is abandoned")
	}
}
