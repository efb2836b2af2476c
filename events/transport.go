package events

import (
	"sync"
	"sync/atomic"
)

// Transport fans events out to registered subscriber channels.
// Publishing never blocks: if a subscriber's channel is full the event is
// dropped for that subscriber.
type Transport struct {
	clients map[string]chan Event
	mu      sync.RWMutex
	dropped atomic.Int64

	recorder *Recorder
}

// NewTransport creates a transport that also records the last history events
// (0 disables recording).
func NewTransport(history int) *Transport {
	t := &Transport{clients: make(map[string]chan Event)}
	if history > 0 {
		t.recorder = NewRecorder(history)
	}
	return t
}

// Register adds a subscriber. The channel should be buffered.
func (t *Transport) Register(id string, ch chan Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients[id] = ch
}

// Unregister removes a subscriber
func (t *Transport) Unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, id)
}

// Publish records ev and delivers it to every subscriber with room
func (t *Transport) Publish(ev Event) {
	if t.recorder != nil {
		t.recorder.Record(ev)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ch := range t.clients {
		select {
		case ch <- ev:
		default:
			t.dropped.Add(1)
		}
	}
}

// History returns the recorded events, oldest first
func (t *Transport) History() []Event {
	if t.recorder == nil {
		return nil
	}
	return t.recorder.Events()
}

// ClientCount returns the number of registered subscribers
func (t *Transport) ClientCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}

// Dropped returns how many deliveries were skipped because a channel was full
func (t *Transport) Dropped() int64 {
	return t.dropped.Load()
}

// Recorder keeps the most recent events in a ring buffer
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewRecorder creates a recorder holding up to size events
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{events: make([]Event, size)}
}

// Record stores ev, evicting the oldest event when full
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = ev
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// Events returns the stored events, oldest first
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Reset clears the recorder
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make([]Event, len(r.events))
	r.next = 0
	r.full = false
}
