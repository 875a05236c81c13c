package types

import (
	"context"
	"sync/atomic"
)

// Result is the single outcome stored in a Future: a value or an error.
type Result[V any] struct {
	Value V
	Error error
}

// NewResult builds a Result from a value and an error.
func NewResult[V any](value V, err error) Result[V] {
	return Result[V]{Value: value, Error: err}
}

// Future is a single-resolution result cell.
//
// A Future is resolved at most once, either through Complete or Fail.
// Every later resolution attempt is rejected and leaves the stored result
// untouched. Any number of readers may wait on it concurrently.
type Future[V any] struct {
	resolved atomic.Bool
	rejected atomic.Int64
	done     chan struct{}
	result   Result[V]
}

// NewFuture creates an unresolved Future.
func NewFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

// Complete resolves the future with a value.
// It reports false if the future was already resolved.
func (f *Future[V]) Complete(value V) bool {
	return f.resolve(Result[V]{Value: value})
}

// Fail resolves the future with an error.
// It reports false if the future was already resolved.
func (f *Future[V]) Fail(err error) bool {
	return f.resolve(Result[V]{Error: err})
}

// Resolve stores r as the outcome, reporting false if one was already stored.
func (f *Future[V]) Resolve(r Result[V]) bool {
	return f.resolve(r)
}

func (f *Future[V]) resolve(r Result[V]) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		f.rejected.Add(1)
		return false
	}

	// result is published by closing done; readers only touch it after <-done.
	f.result = r
	close(f.done)
	return true
}

// Get blocks until the future is resolved and returns its outcome.
// Repeated calls return the same outcome.
func (f *Future[V]) Get() (V, error) {
	<-f.done
	return f.result.Value, f.result.Error
}

// GetWithContext is like Get but gives up when ctx is done.
func (f *Future[V]) GetWithContext(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// TryGet returns the outcome without blocking. ready is false while the
// future is unresolved.
func (f *Future[V]) TryGet() (value V, err error, ready bool) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error, true
	default:
		var zero V
		return zero, nil, false
	}
}

// Done returns a channel that is closed once the future is resolved.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the future has been resolved.
func (f *Future[V]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Rejected returns how many resolution attempts arrived after the first one.
func (f *Future[V]) Rejected() int64 {
	return f.rejected.Load()
}
