// Package notify fans out progress events to UI subscribers.
package notify

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Topic names the kind of change an event reports.
type Topic string

const (
	TopicActivity Topic = "activity"
	TopicLogin    Topic = "login"
	TopicClaim    Topic = "claim"
)

// Event is a progress change for one user.
type Event struct {
	ID      string
	Topic   Topic
	UserID  string
	QuestID string
	Points  int
	At      time.Time
}

// Bus delivers published events to every current subscriber. Publish never
// blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	next   int
	subs   map[int]chan Event
	closed bool
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish stamps ev with an id and time when missing and delivers it. It
// returns the number of subscribers that received the event.
func (b *Bus) Publish(ev Event) int {
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Close unregisters and closes every subscriber. Later subscriptions receive
// a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
