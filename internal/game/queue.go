package game

import "sync"

// Frame is one server-push message ready for the wire. Event is the SSE
// event type; it is empty for ordinary data events and set only for the
// internal liveness probe.
type Frame struct {
	Event string
	Data  []byte
}

// ProbeFrame is the empty frame the reaper sends to check a player's
// channel is still being drained.
var ProbeFrame = Frame{Event: "test"}

// EventQueue is the unbounded outbound queue attached to one player
// connection. Send never blocks, so a slow consumer cannot stall a
// room's broadcast fan-out; the consuming stream drains buffered frames
// after each notification.
type EventQueue struct {
	mu     sync.Mutex
	frames []Frame
	notify chan struct{}
	closed bool
}

func NewEventQueue() *EventQueue {
	return &EventQueue{notify: make(chan struct{}, 1)}
}

// Send enqueues a frame. It fails only when the queue has been closed by
// the consuming stream, which the caller treats as a dead channel.
func (q *EventQueue) Send(f Frame) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.frames = append(q.frames, f)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Drain takes every buffered frame, oldest first.
func (q *EventQueue) Drain() []Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	frames := q.frames
	q.frames = nil
	return frames
}

// Notify signals when new frames may be available. The channel has a
// one-slot buffer; consumers must Drain until empty after each receive.
func (q *EventQueue) Notify() <-chan struct{} {
	return q.notify
}

// Close marks the queue dead. Subsequent Sends fail; buffered frames are
// discarded.
func (q *EventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.frames = nil
	q.mu.Unlock()
	// Wake the consumer so it notices the close.
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *EventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
