// Package streams provides the minimal reactive-stream primitives this
// client needs: a cached single-shot future (Lazy[T], standing in for
// Mono/lazy<T>) and a scheduler abstraction for where callbacks run.
// Sequences themselves are realized directly as Go channels
// (<-chan Delivery[T]) rather than a bespoke publisher type: a channel's
// blocking send already is backpressure, so no request(n) protocol is needed.
package streams

import "sync"

// Lazy is a cached, single-shot future. The first call to Get (from any
// goroutine) runs the producing function and caches its result; every
// subsequent call, including concurrent ones, observes the same value or
// error without re-running the function. This mirrors Reactor's
// Mono.fromCallable(...).cache() used to guard a single producer
// construction behind many concurrent first-uses.
type Lazy[T any] struct {
	once     sync.Once
	resolved chan struct{}
	value    T
	err      error
	fn       func() (T, error)
}

// NewLazy wraps fn so it runs at most once.
func NewLazy[T any](fn func() (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn, resolved: make(chan struct{})}
}

// Get resolves the lazy value, running fn on the first call.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.fn()
		close(l.resolved)
	})
	<-l.resolved
	return l.value, l.err
}

// FromCallback bridges a callback-style API into a Lazy[T]: call resolve
// exactly once (from whatever thread the underlying driver uses) to settle
// the future. This is the Go realization of "bridge a single coroutine
// suspension point to a callback-based API".
func FromCallback[T any]() (future *Lazy[T], resolve func(T, error)) {
	var (
		once sync.Once
		done = make(chan struct{})
		val  T
		err  error
	)
	resolve = func(v T, e error) {
		once.Do(func() {
			val, err = v, e
			close(done)
		})
	}
	future = NewLazy(func() (T, error) {
		<-done
		return val, err
	})
	return future, resolve
}
