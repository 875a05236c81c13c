package bench

import (
	"io"
	"time"

	"github.com/utkarsh5026/taskbench/workload"
)

// DefaultLevels are the concurrency levels every workload is measured at.
var DefaultLevels = []int{1, 10, 100, 1000, 4000}

// Config drives a Suite and the Env it runs in.
type Config struct {
	Levels    []int
	Kinds     []workload.Kind
	Launchers []string

	// Throughput mode only; single-shot always uses one of each.
	Warmup     int
	Iterations int

	WaitDuration time.Duration
	URL          string
	FilePath     string
	BufferSize   int

	// Workers of the file pool and the task pool (0 = GOMAXPROCS).
	PoolWorkers int
	PinWorkers  bool

	// Admission limit for the task pool; zero disables it.
	RateLimit float64
	RateBurst int

	// Wall-clock cutoff for one trial; zero means none.
	TrialTimeout time.Duration

	// Progress bar destination; nil disables it.
	Progress io.Writer
}

// DefaultConfig returns the standard suite: all workloads at all levels on
// goroutines.
func DefaultConfig() Config {
	return Config{
		Levels:       append([]int(nil), DefaultLevels...),
		Kinds:        append([]workload.Kind(nil), workload.Kinds...),
		Launchers:    []string{"goroutine"},
		Warmup:       2,
		Iterations:   5,
		WaitDuration: workload.DefaultWaitDuration,
		URL:          workload.DefaultURL,
		BufferSize:   workload.DefaultBufferSize,
	}
}

// plan returns the number of (kind, level, launcher) cases.
func (c Config) plan() int {
	return len(c.Kinds) * len(c.Levels) * len(c.Launchers)
}
