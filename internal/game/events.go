package game

// Event is a value pushed to every player in a room. The Name tag is the
// JSON discriminator the client switches on.
type Event interface {
	EventName() string
}

// PlayerJoined announces a player entering the room, with the cones
// placed for their color.
type PlayerJoined struct {
	Name        string `json:"name"`
	UserID      int    `json:"user_id"`
	RoomID      string `json:"room_id"`
	PlayerCones []Cell `json:"player_cones"`
	PlayerName  string `json:"player_name"`
	PlayerColor Color  `json:"player_color"`
	PlayerReady bool   `json:"player_ready"`
}

func (e PlayerJoined) EventName() string { return e.Name }

// PlayerLeft announces a departure. RemoveCones tells clients whether the
// player's cones were taken off the board (lobby phase) or stay in place.
type PlayerLeft struct {
	Name        string `json:"name"`
	UserID      int    `json:"user_id"`
	RoomID      string `json:"room_id"`
	NextTurn    int    `json:"next_turn"`
	RemoveCones bool   `json:"remove_cones"`
	PlayerColor Color  `json:"player_color"`
}

func (e PlayerLeft) EventName() string { return e.Name }

// MoveMade carries an applied move path and the resulting turn cursor.
type MoveMade struct {
	Name         string `json:"name"`
	ByUserID     int    `json:"by_user_id"`
	Path         []Cell `json:"path"`
	NextPlayer   int    `json:"next_player"`
	GameFinished bool   `json:"game_finished"`
}

func (e MoveMade) EventName() string { return e.Name }

// ChatMessage is a lobby chat line and/or a ready-state change.
type ChatMessage struct {
	Name    string  `json:"name"`
	By      string  `json:"by"`
	UserID  int     `json:"user_id"`
	Message *string `json:"message,omitempty"`
	Ready   *bool   `json:"ready,omitempty"`
}

func (e ChatMessage) EventName() string { return e.Name }

// RoomStateUpdate pushes the full room descriptor, sent on start/stop.
type RoomStateUpdate struct {
	Name string   `json:"name"`
	Room RoomDesc `json:"room"`
}

func (e RoomStateUpdate) EventName() string { return e.Name }

// GameStateUpdate pushes a snapshot of the board, sent on color changes.
type GameStateUpdate struct {
	Name   string     `json:"name"`
	RoomID string     `json:"room_id"`
	Game   *GameState `json:"game"`
}

func (e GameStateUpdate) EventName() string { return e.Name }

// MoveTimer announces the move deadline now running against a player.
type MoveTimer struct {
	Name       string `json:"name"`
	TimerValue int    `json:"timer_value"`
	UserID     int    `json:"user_id"`
}

func (e MoveTimer) EventName() string { return e.Name }

// TurnChange announces a turn advanced without a move (deadline expiry).
type TurnChange struct {
	Name       string `json:"name"`
	TurnGoesTo int    `json:"turn_goes_to"`
}

func (e TurnChange) EventName() string { return e.Name }

func newPlayerJoined(userID int, roomID string, cones []Cell, name string, color Color, ready bool) PlayerJoined {
	if cones == nil {
		cones = []Cell{}
	}
	return PlayerJoined{
		Name:        "player_joined",
		UserID:      userID,
		RoomID:      roomID,
		PlayerCones: cones,
		PlayerName:  name,
		PlayerColor: color,
		PlayerReady: ready,
	}
}

func newPlayerLeft(userID int, roomID string, nextTurn int, removeCones bool, color Color) PlayerLeft {
	return PlayerLeft{
		Name:        "player_left",
		UserID:      userID,
		RoomID:      roomID,
		NextTurn:    nextTurn,
		RemoveCones: removeCones,
		PlayerColor: color,
	}
}

func newMoveMade(byUserID int, path []Cell, nextPlayer int, finished bool) MoveMade {
	return MoveMade{
		Name:         "move_made",
		ByUserID:     byUserID,
		Path:         path,
		NextPlayer:   nextPlayer,
		GameFinished: finished,
	}
}

func newChatMessage(by string, userID int, message *string, ready *bool) ChatMessage {
	return ChatMessage{
		Name:    "chat_message",
		By:      by,
		UserID:  userID,
		Message: message,
		Ready:   ready,
	}
}

func newRoomStateUpdate(desc RoomDesc) RoomStateUpdate {
	return RoomStateUpdate{Name: "room_state_update", Room: desc}
}

func newGameStateUpdate(roomID string, gs *GameState) GameStateUpdate {
	return GameStateUpdate{Name: "game_state", RoomID: roomID, Game: gs}
}

// NewMoveTimer is also built by the timer service when re-arming.
func NewMoveTimer(seconds, userID int) MoveTimer {
	return MoveTimer{Name: "move_timer", TimerValue: seconds, UserID: userID}
}

func newTurnChange(turnGoesTo int) TurnChange {
	return TurnChange{Name: "turn_change", TurnGoesTo: turnGoesTo}
}
