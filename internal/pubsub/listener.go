package pubsub

import (
	"context"
)

// ContinuousListener wraps a broker subscription for consumers that poll for
// events one at a time instead of ranging over the channel.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener creates a new listener that subscribes to the broker.
// The subscription is automatically cleaned up when the context is cancelled.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx),
	}
}

// Next blocks until an event arrives, the context is cancelled, or the
// subscription is closed. ok is false when no further events will arrive.
func (l *ContinuousListener[T]) Next() (event Event[T], ok bool) {
	select {
	case <-l.ctx.Done():
		return event, false
	case event, ok = <-l.ch:
		return event, ok
	}
}

// Events exposes the raw subscription channel for select loops.
func (l *ContinuousListener[T]) Events() <-chan Event[T] {
	return l.ch
}
