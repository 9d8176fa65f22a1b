package game

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// MaxPlayersPerRoom is the board's seat count: one per color.
const MaxPlayersPerRoom = 6

// RoomDesc is the JSON shape of a room in listings and state updates.
// Timestamps are unix milliseconds.
type RoomDesc struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Winner         *int   `json:"winner"`
	CreatedBy      int    `json:"created_by"`
	CreatedTime    int64  `json:"created_time"`
	GameStarted    bool   `json:"game_started"`
	GameFinished   bool   `json:"game_finished"`
	ActivePlayer   int    `json:"active_player"`
	NumberOfPlayer int    `json:"number_of_player"`
}

// Room aggregates the board state with the roster, turn cursor and
// lifecycle flags. A single mutex guards all of it; broadcasts happen
// under the lock because player queues never block.
type Room struct {
	mu sync.Mutex

	ID          string
	Name        string
	CreatedBy   int
	CreatedTime time.Time
	LastUpdated time.Time

	GameStarted  bool
	GameFinished bool
	Winner       *int
	ActivePlayer int

	Players []*Player
	Game    *GameState
}

// NewRoom constructs a room in the lobby phase.
func NewRoom(id string, createdBy int, name string) *Room {
	now := time.Now()
	return &Room{
		ID:          id,
		Name:        name,
		CreatedBy:   createdBy,
		CreatedTime: now,
		LastUpdated: now,
		Game:        NewGameState(),
	}
}

// broadcast serializes the event once and enqueues it on every player's
// queue. Failures on a single queue are logged and do not abort the
// fan-out. Callers must hold r.mu.
func (r *Room) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("room %s: failed to encode %s event: %v", r.ID, ev.EventName(), err)
		return
	}
	frame := Frame{Data: data}
	for _, p := range r.Players {
		if err := p.Queue.Send(frame); err != nil {
			log.Printf("room %s: dropping %s event for user %d: %v", r.ID, ev.EventName(), p.UserID, err)
		}
	}
}

// Broadcast fans a typed event out to every connected player.
func (r *Room) Broadcast(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(ev)
}

func (r *Room) player(userID int) *Player {
	for _, p := range r.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// lowestFreeColor picks the default color for a joiner: the lowest color
// number not yet assigned to any player.
func (r *Room) lowestFreeColor() Color {
	for c := Color(1); c <= MaxColor; c++ {
		taken := false
		for _, owned := range r.Game.PlayersColors {
			if owned == c {
				taken = true
				break
			}
		}
		if !taken {
			return c
		}
	}
	return Neutral
}

// Join attaches a player to the room with the given outbound queue. A
// returning player keeps their ready flag and color; their stream is
// rebound. New joiners get the lowest free color and its home cones.
func (r *Room) Join(userID int, name string, q *EventQueue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p := r.player(userID)
	if p != nil {
		// Reconnection: rebind the stream, closing the replaced queue so
		// the old connection task unwinds.
		if p.Queue != nil && p.Queue != q {
			p.Queue.Close()
		}
		p.Queue = q
		p.LastActive = now
	} else {
		if len(r.Players) >= MaxPlayersPerRoom {
			return ErrRoomFull
		}
		if r.GameStarted {
			if _, ok := r.Game.PlayersColors[userID]; !ok {
				return ErrGameStarted
			}
		}
		p = &Player{UserID: userID, Name: name, Queue: q, LastActive: now}
		r.Players = append(r.Players, p)
		if len(r.Players) == 1 {
			r.CreatedBy = userID
		}
	}

	color, assigned := r.Game.PlayersColors[userID]
	if !assigned {
		color = r.lowestFreeColor()
	}
	if err := r.Game.AddCones(userID, color); err != nil {
		log.Printf("room %s: could not place cones for user %d: %v", r.ID, userID, err)
	}

	r.LastUpdated = now
	r.broadcast(newPlayerJoined(userID, r.ID, r.Game.PlayerCones(userID), p.Name, color, p.Ready))
	return nil
}

// Leave removes the player. In the lobby their cones and color are
// released; mid-game the cones stay on the board. The turn cursor is
// clamped so the next remaining player becomes active.
func (r *Room) Leave(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(userID)
}

// LeaveIfAttached runs the leave logic only while the player's stream is
// still the given queue. A reconnection that rebound the queue makes the
// old stream's teardown a no-op.
func (r *Room) LeaveIfAttached(userID int, q *EventQueue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.player(userID)
	if p == nil || p.Queue != q {
		return nil
	}
	return r.leaveLocked(userID)
}

func (r *Room) leaveLocked(userID int) error {
	idx := -1
	for i, p := range r.Players {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUserNotFound
	}
	leaving := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	if leaving.Queue != nil {
		leaving.Queue.Close()
	}

	color := r.Game.ColorOf(userID)
	removeCones := !r.GameStarted
	if removeCones {
		r.Game.RemoveCones(userID)
	}
	if len(r.Players) == 0 {
		r.ActivePlayer = 0
	} else {
		r.ActivePlayer %= len(r.Players)
	}
	r.LastUpdated = time.Now()
	r.broadcast(newPlayerLeft(userID, r.ID, r.ActivePlayer, removeCones, color))
	return nil
}

// SetColor reassigns the player's color during the lobby phase. Rejected
// once the player has readied up or when another player owns the color.
func (r *Room) SetColor(userID int, color Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.GameStarted {
		return ErrNotInLobby
	}
	p := r.player(userID)
	if p == nil {
		return ErrUserNotFound
	}
	if p.Ready {
		return ErrPlayerReady
	}
	if color == Neutral || color > MaxColor {
		return ErrInvalidState
	}
	for id, owned := range r.Game.PlayersColors {
		if owned == color && id != userID {
			return ErrColorTaken
		}
	}

	old := r.Game.ColorOf(userID)
	r.Game.RemoveCones(userID)
	if err := r.Game.AddCones(userID, color); err != nil {
		if old != Neutral {
			if rbErr := r.Game.AddCones(userID, old); rbErr != nil {
				log.Printf("room %s: failed to restore color %s for user %d: %v", r.ID, old, userID, rbErr)
			}
		}
		return err
	}
	r.LastUpdated = time.Now()
	r.broadcast(newGameStateUpdate(r.ID, r.Game.Clone()))
	return nil
}

// Chat broadcasts a chat event carrying a message, a ready change, or
// both. The broadcast reflects the player's new ready state.
func (r *Room) Chat(userID int, message *string, setReady *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.player(userID)
	if p == nil {
		return ErrUserNotFound
	}
	if setReady != nil {
		p.Ready = *setReady
	}
	r.LastUpdated = time.Now()
	r.broadcast(newChatMessage(p.Name, userID, message, setReady))
	return nil
}

// Start begins the game. Only the creator may start, and every player
// must have readied up first.
func (r *Room) Start(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreatedBy != userID {
		return ErrNotCreator
	}
	if r.GameStarted {
		return ErrGameStarted
	}
	if len(r.Players) == 0 {
		return ErrNotReady
	}
	for _, p := range r.Players {
		if !p.Ready {
			return ErrNotReady
		}
	}
	r.GameStarted = true
	r.LastUpdated = time.Now()
	r.broadcast(newRoomStateUpdate(r.descLocked()))
	return nil
}

// Stop halts a running game. Creator only.
func (r *Room) Stop(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreatedBy != userID {
		return ErrNotCreator
	}
	r.GameStarted = false
	r.LastUpdated = time.Now()
	r.broadcast(newRoomStateUpdate(r.descLocked()))
	return nil
}

// MakeMove applies a move path for the active player and advances the
// turn. Returns the broadcast event so the caller can manage the move
// deadline timer. A rejected move leaves the room unchanged.
func (r *Room) MakeMove(userID int, path []Cell) (MoveMade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.GameStarted || r.GameFinished {
		return MoveMade{}, ErrGameNotActive
	}
	if len(r.Players) == 0 || r.Players[r.ActivePlayer].UserID != userID {
		return MoveMade{}, ErrNotYourTurn
	}
	if len(path) == 0 {
		return MoveMade{}, ErrInvalidPath
	}
	coneColor, ok := r.Game.Cones[path[0]]
	if !ok || coneColor != r.Game.ColorOf(userID) {
		return MoveMade{}, ErrNotYourCone
	}

	applied, finished, err := r.Game.UpdateCones(path, userID)
	if err != nil {
		return MoveMade{}, err
	}
	next := (r.ActivePlayer + 1) % len(r.Players)
	r.ActivePlayer = next
	if finished {
		winner := userID
		r.Winner = &winner
		r.GameFinished = true
	}
	r.LastUpdated = time.Now()
	ev := newMoveMade(userID, applied, next, finished)
	r.broadcast(ev)
	return ev, nil
}

// ValidatePath dry-runs path validation against the current board.
func (r *Room) ValidatePath(path []Cell) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Game.ValidatePath(path)
}

// AdvanceTurnOnTimeout rotates the turn cursor when the move deadline
// expires without a move. Reports the user now on the clock and whether
// the deadline should be re-armed.
func (r *Room) AdvanceTurnOnTimeout() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.GameStarted || r.GameFinished || len(r.Players) == 0 {
		return 0, false
	}
	r.ActivePlayer = (r.ActivePlayer + 1) % len(r.Players)
	r.LastUpdated = time.Now()
	r.broadcast(newTurnChange(r.ActivePlayer))
	return r.Players[r.ActivePlayer].UserID, true
}

// ActiveUserID returns the user whose turn it is, false when the game is
// not running.
func (r *Room) ActiveUserID() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.GameStarted || r.GameFinished || len(r.Players) == 0 {
		return 0, false
	}
	return r.Players[r.ActivePlayer].UserID, true
}

// Desc snapshots the room descriptor.
func (r *Room) Desc() RoomDesc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.descLocked()
}

func (r *Room) descLocked() RoomDesc {
	return RoomDesc{
		ID:             r.ID,
		Name:           r.Name,
		Winner:         r.Winner,
		CreatedBy:      r.CreatedBy,
		CreatedTime:    r.CreatedTime.UnixMilli(),
		GameStarted:    r.GameStarted,
		GameFinished:   r.GameFinished,
		ActivePlayer:   r.ActivePlayer,
		NumberOfPlayer: len(r.Players),
	}
}

// PlayerDescs snapshots the roster with assigned colors.
func (r *Room) PlayerDescs() []PlayerDesc {
	r.mu.Lock()
	defer r.mu.Unlock()
	descs := make([]PlayerDesc, 0, len(r.Players))
	for _, p := range r.Players {
		descs = append(descs, PlayerDesc{
			Name:   p.Name,
			Color:  r.Game.ColorOf(p.UserID),
			UserID: p.UserID,
			Ready:  p.Ready,
		})
	}
	return descs
}

// GameSnapshot deep-copies the board state for read endpoints.
func (r *Room) GameSnapshot() *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Game.Clone()
}

// PlayerCount returns the roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// Abandoned reports whether the room is empty and its game has ended,
// which allows immediate removal at stream close.
func (r *Room) Abandoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players) == 0 && r.GameFinished
}

// Stale reports whether the room is empty and idle longer than ttl.
func (r *Room) Stale(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players) == 0 && now.Sub(r.LastUpdated) > ttl
}

// Sweep liveness-probes every player and evicts those whose channel is
// dead and whose LastActive is older than ttl. One player_left event is
// broadcast per eviction. Returns the user ids evicted.
func (r *Room) Sweep(now time.Time, ttl time.Duration) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.Players {
		if err := p.Queue.Send(ProbeFrame); err == nil {
			p.LastActive = now
		}
	}

	var evicted []int
	for _, p := range r.Players {
		if now.Sub(p.LastActive) > ttl {
			evicted = append(evicted, p.UserID)
		}
	}
	for _, userID := range evicted {
		if err := r.leaveLocked(userID); err != nil {
			log.Printf("room %s: failed to evict user %d: %v", r.ID, userID, err)
		}
	}
	return evicted
}
