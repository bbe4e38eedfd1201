package notes

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Subscriber is one live connection of a user.
type Subscriber struct {
	ID          ulid.ULID
	UserID      bson.ObjectID
	ConnectedAt time.Time
	Ch          chan NoteEvent
	Done        chan struct{}
}

// Hub fans note events out to the live connections of the note owner. Slow
// connections lose events instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	byUser  map[bson.ObjectID]map[ulid.ULID]*Subscriber
	owner   map[ulid.ULID]bson.ObjectID
	buffer  int
	dropped atomic.Uint64
	log     *slog.Logger
}

// NewHub creates a hub whose subscribers buffer up to bufferSize events.
func NewHub(bufferSize int, log *slog.Logger) *Hub {
	return &Hub{
		byUser: make(map[bson.ObjectID]map[ulid.ULID]*Subscriber),
		owner:  make(map[ulid.ULID]bson.ObjectID),
		buffer: bufferSize,
		log:    log,
	}
}

// Subscribe registers a new connection for userID. The returned func unsubscribes it.
func (h *Hub) Subscribe(userID bson.ObjectID) (*Subscriber, func()) {
	sub := &Subscriber{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader),
		UserID:      userID,
		ConnectedAt: time.Now(),
		Ch:          make(chan NoteEvent, h.buffer),
		Done:        make(chan struct{}),
	}

	h.mu.Lock()
	bucket, ok := h.byUser[userID]
	if !ok {
		bucket = make(map[ulid.ULID]*Subscriber)
		h.byUser[userID] = bucket
	}
	bucket[sub.ID] = sub
	h.owner[sub.ID] = userID
	h.mu.Unlock()

	h.log.Debug("subscribed connection", "conn_id", sub.ID.String(), "user_id", userID.Hex())
	return sub, func() { h.Unsubscribe(sub.ID) }
}

// Unsubscribe removes a connection and closes its channels. Unknown ids are ignored.
func (h *Hub) Unsubscribe(connID ulid.ULID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	uid, ok := h.owner[connID]
	if !ok {
		return
	}
	delete(h.owner, connID)

	bucket := h.byUser[uid]
	if sub, ok := bucket[connID]; ok {
		delete(bucket, connID)
		close(sub.Ch)
		close(sub.Done)
	}
	if len(bucket) == 0 {
		delete(h.byUser, uid)
	}
	h.log.Debug("unsubscribed connection", "conn_id", connID.String())
}

// Broadcast delivers ev to every connection of ev.Note.UserID.
func (h *Hub) Broadcast(_ context.Context, ev NoteEvent) {
	if ev.Note == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.byUser[ev.Note.UserID] {
		sendOrDrop(sub.Ch, ev, func() {
			h.dropped.Add(1)
			h.log.Warn("outbox full, dropping event", "conn_id", sub.ID.String(), "user_id", sub.UserID.Hex(), "event_type", ev.Type)
		})
	}
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan NoteEvent, ev NoteEvent, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

// Stats returns the number of live connections and of dropped events.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, bucket := range h.byUser {
		subscribers += len(bucket)
	}
	return subscribers, h.dropped.Load()
}
