package notifier

import (
	"log/slog"
	"sync"

	"github.com/teamdraw/teamdraw-go/internal/model"
)

// subscriptionBuffer is the per-subscriber channel depth. One slot is enough:
// events carry full snapshots, so a slow subscriber only ever needs the most
// recent one.
const subscriptionBuffer = 1

// Subscription is one observer's stream of change events
type Subscription struct {
	ch chan model.ChangeEvent
}

// Events returns the subscription's event channel.
// The channel is closed when the subscription is released or the notifier
// shuts down.
func (s *Subscription) Events() <-chan model.ChangeEvent {
	return s.ch
}

// Notifier fans registry change events out to subscribed observers.
//
// Delivery per subscriber follows publish order, but a subscriber that does
// not keep up has stale pending events replaced by newer ones (latest-wins)
// rather than being backlogged. A subscriber never observes an event older
// than one it has already received.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
	logger *slog.Logger
}

// New creates a Notifier
func New(logger *slog.Logger) *Notifier {
	return &Notifier{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Subscribe registers a new observer
func (n *Notifier) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan model.ChangeEvent, subscriptionBuffer)}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(sub.ch)
		return sub
	}
	n.subs[sub] = struct{}{}
	n.logger.Debug("subscriber added", slog.Int("total", len(n.subs)))
	return sub
}

// Unsubscribe releases an observer and closes its channel
func (n *Notifier) Unsubscribe(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.subs[sub]; !ok {
		return
	}
	delete(n.subs, sub)
	close(sub.ch)
	n.logger.Debug("subscriber removed", slog.Int("total", len(n.subs)))
}

// Publish delivers an event to every subscriber without blocking.
// The registry calls this inside its mutation critical section, so publish
// order equals commit order.
func (n *Notifier) Publish(event model.ChangeEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	coalesced := 0
	for sub := range n.subs {
		select {
		case sub.ch <- event:
		default:
			// Subscriber is behind; replace its stale pending event
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
			coalesced++
		}
	}
	if coalesced > 0 {
		n.logger.Warn("snapshot coalesced for slow subscribers",
			slog.Int("coalesced", coalesced),
			slog.String("kind", string(event.Kind)))
	}
}

// SubscriberCount returns the number of active subscriptions
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Close shuts down the notifier and closes every subscriber channel
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for sub := range n.subs {
		close(sub.ch)
		delete(n.subs, sub)
	}
	n.logger.Info("notifier closed")
}
