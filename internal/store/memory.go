package store

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sternhalma/internal/game"
)

// ErrRoomNotFound is returned for lookups of unknown room ids.
var ErrRoomNotFound = errors.New("room not found")

// MemoryStore is the process-wide room registry. It is the only
// component holding pointer identity of rooms; everything else looks
// rooms up by id. Server restart clears all state.
//
// Lock ordering: the registry lock is always taken before any room lock,
// never the other way around.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room
}

// NewMemoryStore creates an empty registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*game.Room)}
}

// CreateRoom constructs a new lobby-phase room owned by the creator.
func (s *MemoryStore) CreateRoom(createdBy int, name string) *game.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := strings.ReplaceAll(uuid.NewString(), "-", "")
	room := game.NewRoom(roomID, createdBy, name)
	s.rooms[roomID] = room
	return room
}

// GetRoom retrieves a room by id.
func (s *MemoryStore) GetRoom(id string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// DeleteRoom drops a room from the registry.
func (s *MemoryStore) DeleteRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// DeleteIfAbandoned removes the room when it is empty and its game has
// finished. Used by the connection manager at stream close.
func (s *MemoryStore) DeleteIfAbandoned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	if !room.Abandoned() {
		return false
	}
	delete(s.rooms, id)
	return true
}

// Rooms lists all room descriptors, newest first.
func (s *MemoryStore) Rooms() []game.RoomDesc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	descs := make([]game.RoomDesc, 0, len(s.rooms))
	for _, room := range s.rooms {
		descs = append(descs, room.Desc())
	}
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].CreatedTime > descs[j].CreatedTime
	})
	return descs
}

// snapshot returns the current rooms for the reaper to walk without
// holding the registry lock during per-room work.
func (s *MemoryStore) snapshot() map[string]*game.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make(map[string]*game.Room, len(s.rooms))
	for id, room := range s.rooms {
		rooms[id] = room
	}
	return rooms
}
