package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/utkarsh5026/taskbench/internal/cpu"
	"github.com/utkarsh5026/taskbench/internal/types"
)

var (
	ErrSchedulerClosed = errors.New("scheduler is closed")
)

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}
	return power
}

// setupWorker pins the calling worker when the config asks for it and
// returns the matching release function.
func setupWorker(conf *Config, workerID int64) func() {
	if !conf.PinWorkers {
		return func() {}
	}
	return cpu.SetupWorkerAffinity(int(workerID))
}

// executeSubmitted runs one job, applying the rate limiter and converting a
// panic into a call to the OnPanic hook. Jobs are never retried.
func executeSubmitted(ctx context.Context, s *types.SubmittedJob, conf *Config) {
	if conf.RateLimiter != nil {
		// The limiter only fails when ctx ends; the job still runs so that
		// whatever it resolves is not left pending.
		_ = conf.RateLimiter.Wait(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			if conf.OnPanic != nil {
				conf.OnPanic(r, buf[:n])
			}
		}
	}()

	s.Job(ctx)
}

type signal struct{}

// workerSignal wakes idle workers without blocking the submitter.
// Closing it releases every waiter for shutdown.
type workerSignal struct {
	mu     sync.RWMutex
	sig    chan signal
	closed bool
}

func newWorkerSignal(capacity int) *workerSignal {
	return &workerSignal{
		sig: make(chan signal, max(capacity, 1)),
	}
}

// Close closes the signal channel; later calls are no-ops.
func (ws *workerSignal) Close() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return
	}
	ws.closed = true
	close(ws.sig)
}

// Signal sends a wake-up if there is room, dropping it otherwise.
func (ws *workerSignal) Signal() {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	if ws.closed {
		return
	}

	select {
	case ws.sig <- signal{}:
	default:
	}
}

// Wait returns the channel idle workers block on.
func (ws *workerSignal) Wait() <-chan signal {
	return ws.sig
}
