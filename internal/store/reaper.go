package store

import (
	"context"
	"log"
	"time"
)

// Reaper is the periodic background sweep: it drops empty rooms past
// their TTL, liveness-probes every player in the surviving rooms and
// evicts players whose channel is dead and whose activity is stale.
type Reaper struct {
	store     *MemoryStore
	roomTTL   time.Duration
	playerTTL time.Duration
}

// NewReaper wires a reaper to the registry. The sweep interval equals
// the room TTL, matching the lifetime guarantees it enforces.
func NewReaper(store *MemoryStore, roomTTL, playerTTL time.Duration) *Reaper {
	return &Reaper{store: store, roomTTL: roomTTL, playerTTL: playerTTL}
}

// Run sweeps every roomTTL until the context is cancelled.
func (rp *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(rp.roomTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rp.Sweep(time.Now())
		}
	}
}

// Sweep performs one reaper pass.
func (rp *Reaper) Sweep(now time.Time) {
	for id, room := range rp.store.snapshot() {
		if room.Stale(now, rp.roomTTL) {
			log.Printf("reaper: removing stale room %s", id)
			rp.store.DeleteRoom(id)
			continue
		}
		evicted := room.Sweep(now, rp.playerTTL)
		for _, userID := range evicted {
			log.Printf("reaper: evicted user %d from room %s", userID, id)
		}
	}
}
