package scheduler

import (
	"golang.org/x/time/rate"
)

// StrategyType selects how submitted jobs are distributed to workers.
type StrategyType int

const (
	// StrategyChannel gives every worker its own channel, filled round-robin.
	StrategyChannel StrategyType = iota
	// StrategyWorkStealing gives every worker a local deque and lets idle
	// workers steal from busy ones.
	StrategyWorkStealing
)

// String returns the strategy name used in logs and reports.
func (s StrategyType) String() string {
	switch s {
	case StrategyWorkStealing:
		return "work-stealing"
	default:
		return "channel"
	}
}

// Config holds the settings shared by every scheduling strategy.
type Config struct {
	// Number of worker goroutines.
	WorkerCount int

	// Per-worker channel buffer for the channel strategy.
	TaskBuffer int

	// Optional token bucket applied before each job runs (may be nil).
	RateLimiter *rate.Limiter

	// Strategy used for distributing jobs.
	Strategy StrategyType

	// Lock every worker to an OS thread pinned to a core.
	PinWorkers bool

	// Called with the recovered value and stack when a job panics.
	OnPanic func(recovered any, stack []byte)
}
