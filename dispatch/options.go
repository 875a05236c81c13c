package dispatch

import (
	"runtime"

	"github.com/utkarsh5026/taskbench/internal/scheduler"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring an Executor.
type Option func(*config)

type config struct {
	workerCount int
	taskBuffer  int
	strategy    scheduler.StrategyType
	pinWorkers  bool
	rateLimiter *rate.Limiter
	onPanic     func(recovered any, stack []byte)
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		workerCount: runtime.GOMAXPROCS(0),
		taskBuffer:  -1,
		strategy:    scheduler.StrategyChannel,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.taskBuffer < 0 {
		cfg.taskBuffer = cfg.workerCount
	}
	return cfg
}

func (c *config) scheduler() *scheduler.Config {
	return &scheduler.Config{
		WorkerCount: c.workerCount,
		TaskBuffer:  c.taskBuffer,
		RateLimiter: c.rateLimiter,
		Strategy:    c.strategy,
		PinWorkers:  c.pinWorkers,
		OnPanic:     c.onPanic,
	}
}

// WithWorkerCount sets the number of workers.
// If not specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithTaskBuffer sets the per-worker queue size of the channel strategy.
// If not specified, defaults to the number of workers.
func WithTaskBuffer(size int) Option {
	return func(cfg *config) {
		if size >= 0 {
			cfg.taskBuffer = size
		}
	}
}

// WithWorkStealing switches the executor to per-worker deques with
// stealing, which suits many short jobs that spawn further jobs.
func WithWorkStealing() Option {
	return func(cfg *config) {
		cfg.strategy = scheduler.StrategyWorkStealing
	}
}

// WithPinnedWorkers locks every worker to its own OS thread and pins that
// thread to a core (Linux only; elsewhere the thread is only locked).
func WithPinnedWorkers() Option {
	return func(cfg *config) {
		cfg.pinWorkers = true
	}
}

// WithRateLimit admits at most jobsPerSecond jobs, with the given burst.
// Non-positive values leave the executor unthrottled.
//
// Example:
//
//	WithRateLimit(1000, 50) // 1000 jobs/sec with bursts of 50
func WithRateLimit(jobsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if jobsPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(jobsPerSecond), burst)
		}
	}
}

// WithPanicHandler is called with the recovered value and stack whenever a
// job panics. The worker keeps running either way.
func WithPanicHandler(fn func(recovered any, stack []byte)) Option {
	return func(cfg *config) {
		cfg.onPanic = fn
	}
}
