// Package timer runs the per-room move-deadline timers.
package timer

import (
	"log"
	"sync"
	"time"

	"sternhalma/internal/game"
)

// RoomLookup resolves a room id at fire time. Timers survive room
// deletion; a fire against a missing room is dropped.
type RoomLookup interface {
	GetRoom(id string) (*game.Room, error)
}

// armedDeadline is one pending timer. The generation number ties a fire
// callback to the arming that scheduled it, so a timer replaced or
// cancelled while its callback is pending fizzles.
type armedDeadline struct {
	timer *time.Timer
	gen   uint64
}

// Service owns at most one armed deadline timer per room. Start replaces
// any armed timer, Cancel drops it without firing. On expiry the room's
// turn advances and the deadline is re-armed for the next player.
type Service struct {
	mu       sync.Mutex
	timers   map[string]*armedDeadline
	gen      uint64
	rooms    RoomLookup
	deadline time.Duration
}

func NewService(rooms RoomLookup, deadline time.Duration) *Service {
	return &Service{
		timers:   make(map[string]*armedDeadline),
		rooms:    rooms,
		deadline: deadline,
	}
}

// Start arms the move deadline for the room's active player, replacing
// any timer already armed, and announces it with a move_timer event.
func (s *Service) Start(roomID string) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return
	}
	userID, ok := room.ActiveUserID()
	if !ok {
		s.Cancel(roomID)
		return
	}
	room.Broadcast(game.NewMoveTimer(int(s.deadline.Seconds()), userID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.timers[roomID]; ok {
		prev.timer.Stop()
	}
	s.gen++
	gen := s.gen
	armed := &armedDeadline{gen: gen}
	// An immediate fire blocks on s.mu until the map entry is in place.
	armed.timer = time.AfterFunc(s.deadline, func() { s.fire(roomID, gen) })
	s.timers[roomID] = armed
}

// Reset re-arms the deadline after a move.
func (s *Service) Reset(roomID string) {
	s.Start(roomID)
}

// Cancel drops the room's armed timer without firing. Idempotent.
func (s *Service) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if armed, ok := s.timers[roomID]; ok {
		armed.timer.Stop()
		delete(s.timers, roomID)
	}
}

func (s *Service) fire(roomID string, gen uint64) {
	s.mu.Lock()
	armed, ok := s.timers[roomID]
	if !ok || armed.gen != gen {
		// Replaced or cancelled while pending.
		s.mu.Unlock()
		return
	}
	delete(s.timers, roomID)
	s.mu.Unlock()

	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return
	}
	userID, again := room.AdvanceTurnOnTimeout()
	if !again {
		return
	}
	log.Printf("room %s: move deadline expired, turn goes to user %d", roomID, userID)
	s.Start(roomID)
}
