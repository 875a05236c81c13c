// Package suspend bridges single-fire completion callbacks into blocking
// calls that return a value or an error.
//
// The calling goroutine parks until the primitive reports its completion,
// then resumes exactly once. Later callbacks are dropped and counted.
package suspend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/utkarsh5026/taskbench/internal/types"
)

// ErrNoCompletion is returned when the primitive fails while registering
// the callback and will therefore never call back.
var ErrNoCompletion = errors.New("suspend: operation will never complete")

var dropped atomic.Int64

// Dropped returns how many callbacks arrived after their operation had
// already been resolved, across the whole process.
func Dropped() int64 {
	return dropped.Load()
}

// CompletionHandler receives the outcome of one asynchronous operation.
// Only the first of Completed or Failed has any effect.
type CompletionHandler[V any] interface {
	Completed(value V)
	Failed(err error)
}

// handler resolves a future; it is the CompletionHandler given to
// primitives by Await.
type handler[V any] struct {
	future *types.Future[V]
}

func (h handler[V]) Completed(value V) {
	if !h.future.Complete(value) {
		dropped.Add(1)
	}
}

func (h handler[V]) Failed(err error) {
	if !h.future.Fail(err) {
		dropped.Add(1)
	}
}

// Await issues an operation through register and blocks until its handler
// is called or ctx ends. A panic inside register is reported as
// ErrNoCompletion.
func Await[V any](ctx context.Context, register func(CompletionHandler[V])) (V, error) {
	future := types.NewFuture[V]()
	h := handler[V]{future: future}

	if err := issue(register, h); err != nil {
		h.Failed(err)
	}

	return future.GetWithContext(ctx)
}

func issue[V any](register func(CompletionHandler[V]), h handler[V]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNoCompletion, r)
		}
	}()
	register(h)
	return nil
}

// SocketChannel is a socket that connects asynchronously.
type SocketChannel interface {
	Connect(addr string, h CompletionHandler[struct{}])
}

// FileChannel is a file that reads asynchronously at an offset.
type FileChannel interface {
	Read(buf []byte, offset int64, h CompletionHandler[int])
}

// Connect starts a non-blocking connect to addr and waits for it. On success
// it resumes with attachment.
func Connect[A any](ctx context.Context, ch SocketChannel, addr string, attachment A) (A, error) {
	_, err := Await(ctx, func(h CompletionHandler[struct{}]) {
		ch.Connect(addr, h)
	})
	if err != nil {
		var zero A
		return zero, err
	}
	return attachment, nil
}

// Read starts a non-blocking read into buf at offset 0 and waits for it. On
// success it returns buf truncated to the bytes read.
func Read(ctx context.Context, ch FileChannel, buf []byte) ([]byte, error) {
	n, err := Await(ctx, func(h CompletionHandler[int]) {
		ch.Read(buf, 0, h)
	})
	if err != nil {
		return nil, err
	}
	if n < 0 || n > len(buf) {
		return nil, fmt.Errorf("suspend: read reported %d bytes for a %d byte buffer", n, len(buf))
	}
	return buf[:n], nil
}
