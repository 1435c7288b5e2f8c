package notify

import (
	"sync"
	"time"

	"github.com/noticedesk/noticedesk-backend/pkg/logger"
)

// Topics crossing component boundaries. Payload-less: subscribers
// simply reload their own state.
const (
	TopicEventsChanged = "events.changed"
	TopicPostsChanged  = "posts.changed"
)

// DefaultDebounceWindow suppresses repeat publishes of one topic
const DefaultDebounceWindow = 1500 * time.Millisecond

// Handler receives one delivery. Handlers run on their own goroutine;
// delivery order across subscribers is unspecified and handlers must
// not depend on each other's ordering.
type Handler func()

// Subscription identifies one active subscriber
type Subscription struct {
	topic string
	id    uint64
}

// Bus is a process-wide topic pub/sub channel with per-topic debounce:
// a publish landing within the window of the last successful delivery
// for the same topic is dropped, not queued. Bursts of identical
// change notifications collapse into one delivery; genuinely distinct
// rapid updates may coalesce too, which is the accepted trade-off.
type Bus struct {
	mu           sync.Mutex
	window       time.Duration
	nextID       uint64
	subs         map[string]map[uint64]Handler
	lastDelivery map[string]time.Time
	now          func() time.Time
}

// NewBus creates a bus with the given debounce window; non-positive
// falls back to the default.
func NewBus(window time.Duration) *Bus {
	return newBus(window, time.Now)
}

func newBus(window time.Duration, now func() time.Time) *Bus {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Bus{
		window:       window,
		subs:         make(map[string]map[uint64]Handler),
		lastDelivery: make(map[string]time.Time),
		now:          now,
	}
}

// Subscribe registers a handler for a topic. Safe from any goroutine.
func (b *Bus) Subscribe(topic string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]Handler)
	}
	b.subs[topic][b.nextID] = h
	return Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes a subscription. Safe from any goroutine; a
// handler already dispatched may still run once.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if handlers, ok := b.subs[s.topic]; ok {
		delete(handlers, s.id)
	}
}

// Publish delivers topic to all subscribers unless the debounce window
// since the last delivery has not elapsed. Returns whether delivery
// happened.
func (b *Bus) Publish(topic string) bool {
	b.mu.Lock()
	now := b.now()
	if last, ok := b.lastDelivery[topic]; ok && now.Sub(last) < b.window {
		b.mu.Unlock()
		logger.GetLogger().Debug().Str("topic", topic).Msg("notification debounced")
		return false
	}
	b.lastDelivery[topic] = now
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		go h()
	}
	return true
}
