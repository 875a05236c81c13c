// Package dispatch provides the long-running executors that deliver I/O
// completions and run pooled tasks.
//
// Two shapes are used across the harness: a single-threaded dispatch
// executor shared by the HTTP client, and a general-purpose work-stealing
// pool that runs blocking file reads.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/taskbench/internal/scheduler"
	"github.com/utkarsh5026/taskbench/internal/types"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotStarted      = errors.New("dispatch: executor not started")
	ErrAlreadyStarted  = errors.New("dispatch: executor already started")
	ErrShutdown        = errors.New("dispatch: executor shut down")
	ErrShutdownTimeout = errors.New("dispatch: shutdown timed out")
)

// Job is a unit of work run by an executor worker.
type Job = types.Job

// Executor is a long-running worker group that accepts jobs after Start
// and drains them on Shutdown. It is safe for concurrent use.
type Executor struct {
	config *config
	mu     sync.RWMutex
	state  *executorState
}

type executorState struct {
	cancel    context.CancelFunc
	started   atomic.Bool
	shutdown  atomic.Bool
	jobIDs    atomic.Int64
	submitted atomic.Int64
	strategy  scheduler.Strategy
	done      chan struct{}
}

// New creates an executor. No workers run until Start is called.
//
// Example:
//
//	exec := dispatch.New(dispatch.WithWorkerCount(4), dispatch.WithWorkStealing())
//	_ = exec.Start(ctx)
//	defer exec.Shutdown(5 * time.Second)
//	_ = exec.Submit(func(ctx context.Context) { ... })
func New(opts ...Option) *Executor {
	return &Executor{config: newConfig(opts...)}
}

// NewSingleThread creates the one-worker FIFO executor used to deliver
// I/O completions.
func NewSingleThread(opts ...Option) *Executor {
	opts = append([]Option{WithWorkerCount(1), WithTaskBuffer(1024)}, opts...)
	return New(opts...)
}

// NewGeneralPool creates a GOMAXPROCS-sized work-stealing pool.
func NewGeneralPool(opts ...Option) *Executor {
	opts = append([]Option{WithWorkStealing()}, opts...)
	return New(opts...)
}

// Start launches the workers. ctx bounds their lifetime: once it is done the
// executor refuses new jobs with ErrShutdown, and the workers drain what is
// queued and exit.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != nil {
		return ErrAlreadyStarted
	}

	strategy := scheduler.New(e.config.scheduler())

	// Workers see cancellation only after the executor is closed, so a
	// job accepted by Submit always has a worker left to run it.
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	state := &executorState{
		strategy: strategy,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	e.state = state
	state.started.Store(true)

	var g errgroup.Group
	for i := range e.config.workerCount {
		g.Go(func() error {
			return strategy.Worker(workerCtx, int64(i))
		})
	}

	go func() {
		_ = g.Wait()
		close(state.done)
	}()
	go e.closeOnDone(ctx, state)

	return nil
}

// closeOnDone closes the executor when the Start context ends before an
// explicit Shutdown.
func (e *Executor) closeOnDone(ctx context.Context, state *executorState) {
	select {
	case <-ctx.Done():
	case <-state.done:
		return
	}

	e.mu.Lock()
	if state.shutdown.CompareAndSwap(false, true) {
		state.strategy.Shutdown()
	}
	e.mu.Unlock()
	state.cancel()
}

// Submit queues a job. It fails with ErrNotStarted before Start and with
// ErrShutdown once Shutdown has begun.
func (e *Executor) Submit(job Job) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := e.state
	if state == nil || !state.started.Load() {
		return ErrNotStarted
	}
	if state.shutdown.Load() {
		return ErrShutdown
	}

	id := state.jobIDs.Add(1)
	if err := state.strategy.Submit(types.NewSubmittedJob(job, id)); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerClosed) {
			return ErrShutdown
		}
		return err
	}
	state.submitted.Add(1)
	return nil
}

// Submitted returns how many jobs have been accepted so far.
func (e *Executor) Submitted() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.state == nil {
		return 0
	}
	return e.state.submitted.Load()
}

// Shutdown stops accepting jobs and waits for workers to finish everything
// already queued (timeout 0 waits forever). On timeout the worker context
// is cancelled and ErrShutdownTimeout is returned.
func (e *Executor) Shutdown(timeout time.Duration) error {
	// Holding the write lock guarantees no Submit is in flight while the
	// strategy closes its queues.
	e.mu.Lock()
	state := e.state
	if state == nil || !state.started.Load() {
		e.mu.Unlock()
		return ErrNotStarted
	}
	if !state.shutdown.CompareAndSwap(false, true) {
		e.mu.Unlock()
		return ErrShutdown
	}
	state.strategy.Shutdown()
	e.mu.Unlock()

	err := waitUntil(state.done, timeout)
	state.cancel()
	return err
}

func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}
