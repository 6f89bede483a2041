package server

import (
	"context"
	"sync"
	"time"
)

const (
	EventNotesChanged       = "notes-changed"
	EventPlansChanged       = "plans-changed"
	EventSessionsChanged    = "sessions-changed"
	EventSessionTick        = "session-tick"
	EventPreferencesChanged = "preferences-changed"
	eventHeartbeat          = "heartbeat"
	eventSourceBackend      = "studyhub"
)

const defaultSubscriberBuffer = 16

// Event announces a change to one of the collections, or a timer tick.
type Event struct {
	Type      string
	IDs       []string
	Payload   any
	Timestamp time.Time
}

// Dispatcher fans events out to every open stream. Slow subscribers miss
// events instead of blocking publishers.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*subscriber
	nextID      int64
	bufferSize  int
	clock       func() time.Time
}

type subscriber struct {
	id     int64
	stream chan Event
}

// NewDispatcher returns a Dispatcher with no subscribers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[int64]*subscriber),
		bufferSize:  defaultSubscriberBuffer,
		clock:       time.Now,
	}
}

// Subscribe registers a stream that lives until ctx is done or the returned
// cleanup is called.
func (d *Dispatcher) Subscribe(ctx context.Context) (<-chan Event, func()) {
	sub := &subscriber{stream: make(chan Event, d.bufferSize)}
	d.mu.Lock()
	d.nextID++
	sub.id = d.nextID
	d.subscribers[sub.id] = sub
	d.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cleanup := func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subscribers, sub.id)
			d.mu.Unlock()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-done:
		}
	}()
	return sub.stream, cleanup
}

// Publish delivers event to every subscriber that has room for it.
func (d *Dispatcher) Publish(event Event) {
	if event.Type == "" {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.clock().UTC()
	}
	d.mu.RLock()
	if len(d.subscribers) == 0 {
		d.mu.RUnlock()
		return
	}
	copies := make([]*subscriber, 0, len(d.subscribers))
	for _, sub := range d.subscribers {
		copies = append(copies, sub)
	}
	d.mu.RUnlock()
	for _, sub := range copies {
		select {
		case sub.stream <- event:
		default:
		}
	}
}

// Subscribers reports the number of open streams.
func (d *Dispatcher) Subscribers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}
