package service

import "sync"

// ActivityBus is a fan-out pub/sub for recorded activity.
type ActivityBus struct {
	mu   sync.RWMutex
	subs map[chan Activity]struct{}
}

// NewActivityBus creates a new activity bus.
func NewActivityBus() *ActivityBus {
	return &ActivityBus{subs: make(map[chan Activity]struct{})}
}

// Publish sends an activity to all subscribers (non-blocking).
func (b *ActivityBus) Publish(a Activity) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- a:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives activity.
func (b *ActivityBus) Subscribe() chan Activity {
	ch := make(chan Activity, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *ActivityBus) Unsubscribe(ch chan Activity) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
