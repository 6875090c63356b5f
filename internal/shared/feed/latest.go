// Package feed provides a latest-value channel used by snapshot subscriptions.
package feed

import (
	"context"
	"sync"
)

// Latest delivers values over a channel of capacity one. A value that has not
// been received yet is replaced by the next published one, so slow consumers
// observe coalesced updates instead of blocking the publisher.
type Latest[T any] struct {
	mu      sync.Mutex
	ch      chan T
	closed  bool
	once    sync.Once
	onClose func()
	stop    func() bool
}

// NewLatest builds a feed. onClose runs once when the feed is closed.
func NewLatest[T any](onClose func()) *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1), onClose: onClose}
}

// CloseWhenDone closes the feed once ctx is cancelled.
func (l *Latest[T]) CloseWhenDone(ctx context.Context) {
	if ctx == nil {
		return
	}
	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	l.mu.Lock()
	l.stop = stop
	l.mu.Unlock()
}

// Publish replaces any pending value with v. It never blocks.
func (l *Latest[T]) Publish(v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- v
	return true
}

// C returns the receive side of the feed. It is closed by Close.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}

// Closed reports whether Close has been called.
func (l *Latest[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close stops delivery and closes the channel. Safe to call more than once.
func (l *Latest[T]) Close() error {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.ch)
		stop := l.stop
		l.mu.Unlock()
		if stop != nil {
			stop()
		}
		if l.onClose != nil {
			l.onClose()
		}
	})
	return nil
}
