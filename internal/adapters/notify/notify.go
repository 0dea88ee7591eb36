// Package notify provides fire-and-forget event fan-out to connected clients.
//
// The broadcaster never blocks a caller: events go to each subscriber over a
// buffered channel and are dropped when a subscriber cannot keep up.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/levelup/heist/pkg/metrics"
)

// AudienceAll addresses every subscriber.
const AudienceAll = "*"

// Default broadcaster configuration constants.
const defaultBufferSize = 64

// Event is a single notification delivered to clients.
type Event struct {
	Type     string      `json:"type"`
	Audience string      `json:"-"`
	Payload  interface{} `json:"payload"`
	TS       time.Time   `json:"ts"`
}

// Notifier is the capability consumed by the heist engine. Delivery is
// best-effort; callers never await confirmation.
type Notifier interface {
	Notify(ctx context.Context, audience, eventType string, payload interface{})
}

// Broadcaster implements Notifier with in-memory channel fan-out.
type Broadcaster struct {
	mu         sync.RWMutex
	subs       map[int]*subscriber
	nextID     int
	bufferSize int
	clock      func() time.Time
}

type subscriber struct {
	ch     chan Event
	teamID string
	admin  bool
}

// Option applies a configuration option to the Broadcaster.
type Option func(*Broadcaster)

// WithBufferSize sets each subscriber's channel buffer.
func WithBufferSize(size int) Option {
	return func(b *Broadcaster) {
		if size > 0 {
			b.bufferSize = size
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Broadcaster) {
		if now != nil {
			b.clock = now
		}
	}
}

// NewBroadcaster creates a broadcaster with configuration options.
func NewBroadcaster(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		subs:       make(map[int]*subscriber),
		bufferSize: defaultBufferSize,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a listener. Team subscribers receive broadcasts and
// events addressed to their team; admin subscribers receive everything.
// The returned cancel func must be called to release the subscription.
func (b *Broadcaster) Subscribe(teamID string, admin bool) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{
		ch:     make(chan Event, b.bufferSize),
		teamID: teamID,
		admin:  admin,
	}
	b.subs[id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	metrics.UpdateEventSubscribers(count)

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		remaining := len(b.subs)
		b.mu.Unlock()
		metrics.UpdateEventSubscribers(remaining)
	}
	return sub.ch, cancel
}

// Notify delivers an event to the audience without blocking. Slow subscribers
// lose events rather than stalling the game loop.
func (b *Broadcaster) Notify(ctx context.Context, audience, eventType string, payload interface{}) {
	ev := Event{
		Type:     eventType,
		Audience: audience,
		Payload:  payload,
		TS:       b.clock(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.wants(audience) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			metrics.RecordEventDropped()
		}
	}
}

func (s *subscriber) wants(audience string) bool {
	if audience == AudienceAll || s.admin {
		return true
	}
	return s.teamID == audience
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
