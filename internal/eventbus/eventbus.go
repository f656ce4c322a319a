// Package eventbus implements the Event Bus (spec.md §4.B): a process-wide,
// named-event broadcaster. Delivery is lossy per slow subscriber — a
// subscriber whose buffer is full misses the event rather than stalling the
// publisher or other subscribers.
//
// Grounded on original_source/src-tauri/src/web.rs's use of
// tokio::sync::broadcast (bounded capacity, a lagging receiver silently drops
// missed messages rather than erroring). Translated to Go's idiom for the
// same shape: one buffered channel per subscriber, non-blocking send via
// select/default. No Go stdlib broadcast primitive exists, and no pub/sub
// library appears in any example repo's go.mod for a single-process fan-out
// this small — dpolishuk-yolo-runner's internal/distributed bus is a
// cross-process NATS/Redis fabric solving a different (and, per spec.md §1's
// Non-goals, out-of-scope) problem.
package eventbus

import (
	"context"
	"sync"

	"github.com/Vg34100/agent-board/internal/domain"
)

// subscriberBuffer bounds how many undelivered events a slow subscriber can
// accumulate before Publish starts dropping events for it.
const subscriberBuffer = 64

// Bus implements domain.EventBus.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan domain.Event
	next int
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan domain.Event)}
}

var _ domain.EventBus = (*Bus)(nil)

// Publish fans event out to every current subscriber. A subscriber whose
// channel is full misses this event; Publish never blocks on a slow reader.
func (b *Bus) Publish(event string, payload any) {
	evt := domain.Event{Name: event, Payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The subscription is unregistered
// automatically when ctx is cancelled or Subscription.Close is called.
func (b *Bus) Subscribe(ctx context.Context) *domain.Subscription {
	ch := make(chan domain.Event, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unregister := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}

	sub := domain.NewSubscription(ch, unregister)

	if ctx != nil {
		go func() {
			<-ctx.Done()
			unregister()
		}()
	}

	return sub
}

// SubscriberCount reports the current number of live subscribers, for
// diagnostics and tests.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
