package game

import "time"

// Player is one room member. Queue is the producing end of the player's
// outbound event stream; it is rebound when a reconnection replaces the
// stream. LastActive drives reaper eviction.
type Player struct {
	UserID     int
	Name       string
	Queue      *EventQueue
	Ready      bool
	LastActive time.Time
}

// PlayerDesc is the JSON shape returned by the players listing.
type PlayerDesc struct {
	Name   string `json:"name"`
	Color  Color  `json:"color"`
	UserID int    `json:"user_id"`
	Ready  bool   `json:"ready"`
}
