// Package events is the same-document broadcast channel between the
// reconciler and its observers.
//
// Publishers never block: each subscriber owns a buffered channel and events
// that do not fit are dropped for that subscriber only.
package events

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

// Type names an event kind.
type Type string

const (
	// TypeStorage mirrors a storage event: a local cache key changed.
	TypeStorage Type = "storage"

	// TypeEnvironmentChanged announces a committed environment.
	TypeEnvironmentChanged Type = "environment-changed"

	// TypeSyncFailure is the catastrophic signal that the stores could not be
	// brought back together. Observers offer a full reload.
	TypeSyncFailure Type = "environment-sync-failure"
)

// Detail carries the payload of environment events.
type Detail struct {
	Environment models.Environment `json:"environment,omitempty"`
	Reason      string             `json:"reason,omitempty"`
}

// Event is one broadcast message.
type Event struct {
	Type     Type      `json:"type"`
	Key      string    `json:"key,omitempty"`
	NewValue string    `json:"newValue,omitempty"`
	Detail   *Detail   `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Storage returns a storage event for key.
func Storage(key, newValue string) Event {
	return Event{Type: TypeStorage, Key: key, NewValue: newValue}
}

// EnvironmentChanged returns an environment-changed event.
func EnvironmentChanged(env models.Environment) Event {
	return Event{Type: TypeEnvironmentChanged, Detail: &Detail{Environment: env}}
}

// SyncFailure returns an environment-sync-failure event.
func SyncFailure(reason string) Event {
	return Event{Type: TypeSyncFailure, Detail: &Detail{Reason: reason}}
}

// Marshal encodes e as JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DefaultBuffer is the channel size given to subscribers.
const DefaultBuffer = 16

// Bus fans events out to subscribers.
type Bus struct {
	log zerolog.Logger

	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log, subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber. The returned cancel function removes it
// and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Warn().Int("subscriber", id).Str("type", string(e.Type)).Msg("event dropped, subscriber is full")
		}
	}
}

// Subscribers returns the number of live subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
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
