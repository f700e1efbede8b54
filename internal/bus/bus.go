// Package bus is a minimal synchronous publish/subscribe channel.
package bus

import "sync"

// Subscription identifies a subscribed handler.
type Subscription uint64

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// Bus delivers events of type T to handlers on the publisher's goroutine,
// in subscription order. There is no buffering.
type Bus[T any] struct {
	mu   sync.Mutex
	subs []subscriber[T]
	next Subscription
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe adds fn and returns a token for Unsubscribe.
func (b *Bus[T]) Subscribe(fn func(T)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs = append(b.subs, subscriber[T]{id: b.next, fn: fn})
	return b.next
}

// Unsubscribe removes the handler. It reports whether it was subscribed.
func (b *Bus[T]) Unsubscribe(id Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish calls every handler subscribed at the time of the call. Handlers
// may subscribe or unsubscribe while being called; that affects the next
// Publish only.
func (b *Bus[T]) Publish(ev T) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// Len returns the number of subscribed handlers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
