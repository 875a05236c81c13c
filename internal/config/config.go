// Package config loads the taskbench run configuration from defaults, an
// optional config file, TASKBENCH_* environment variables and flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/utkarsh5026/taskbench/bench"
	"github.com/utkarsh5026/taskbench/harness"
	"github.com/utkarsh5026/taskbench/report"
	"github.com/utkarsh5026/taskbench/workload"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full configuration of a `taskbench run`.
type Config struct {
	Levels     []int    `mapstructure:"levels"`
	Workloads  []string `mapstructure:"workloads"`
	Launchers  []string `mapstructure:"launchers"`
	Warmup     int      `mapstructure:"warmup"`
	Iterations int      `mapstructure:"iterations"`

	Wait       time.Duration `mapstructure:"wait"`
	URL        string        `mapstructure:"url"`
	File       string        `mapstructure:"file"`
	BufferSize int           `mapstructure:"buffer-size"`

	PoolWorkers  int           `mapstructure:"pool-workers"`
	PinWorkers   bool          `mapstructure:"pin-workers"`
	RateLimit    float64       `mapstructure:"rate-limit"`
	RateBurst    int           `mapstructure:"rate-burst"`
	TrialTimeout time.Duration `mapstructure:"trial-timeout"`

	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CPUProfile string `mapstructure:"cpuprofile"`
	MemProfile string `mapstructure:"memprofile"`
	LogLevel   string `mapstructure:"log-level"`

	// Path of the config file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Levels:     append([]int(nil), bench.DefaultLevels...),
		Workloads:  []string{"wait", "network", "file"},
		Launchers:  []string{"goroutine"},
		Warmup:     2,
		Iterations: 5,
		Wait:       workload.DefaultWaitDuration,
		URL:        workload.DefaultURL,
		BufferSize: workload.DefaultBufferSize,
		Format:     string(report.FormatTable),
		LogLevel:   "info",
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var issues []string

	if len(c.Levels) == 0 {
		issues = append(issues, "at least one level is required")
	}
	for _, l := range c.Levels {
		if l < 1 {
			issues = append(issues, fmt.Sprintf("level %d must be >= 1", l))
		}
	}

	if len(c.Workloads) == 0 {
		issues = append(issues, "at least one workload is required")
	}
	needsFile := false
	for _, w := range c.Workloads {
		kind, err := workload.ParseKind(w)
		if err != nil {
			issues = append(issues, err.Error())
			continue
		}
		needsFile = needsFile || kind == workload.KindFileRead
	}
	if needsFile && strings.TrimSpace(c.File) == "" {
		issues = append(issues, "the file workload needs --file")
	}

	if len(c.Launchers) == 0 {
		issues = append(issues, "at least one launcher is required")
	}
	for _, l := range c.Launchers {
		if _, ok := harness.ParseLauncher(l, nil); !ok {
			issues = append(issues, fmt.Sprintf("unknown launcher %q", l))
		}
	}

	if c.Warmup < 0 {
		issues = append(issues, "warmup must be >= 0")
	}
	if c.Iterations < 1 {
		issues = append(issues, "iterations must be >= 1")
	}
	if c.Wait < 0 {
		issues = append(issues, "wait must be >= 0")
	}
	if c.BufferSize < 1 {
		issues = append(issues, "buffer-size must be >= 1")
	}
	if c.PoolWorkers < 0 {
		issues = append(issues, "pool-workers must be >= 0")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		issues = append(issues, "rate-limit and rate-burst must be >= 0")
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		issues = append(issues, "rate-limit needs a rate-burst of at least 1")
	}
	if c.TrialTimeout < 0 {
		issues = append(issues, "trial-timeout must be >= 0")
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		issues = append(issues, err.Error())
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		issues = append(issues, err.Error())
	}

	if len(issues) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(issues, "; "))
	}
	return nil
}

// Suite converts the configuration into the suite runner's form. It
// assumes Validate has passed.
func (c Config) Suite() (bench.Config, error) {
	kinds := make([]workload.Kind, 0, len(c.Workloads))
	for _, w := range c.Workloads {
		kind, err := workload.ParseKind(w)
		if err != nil {
			return bench.Config{}, err
		}
		kinds = append(kinds, kind)
	}

	return bench.Config{
		Levels:       c.Levels,
		Kinds:        kinds,
		Launchers:    c.Launchers,
		Warmup:       c.Warmup,
		Iterations:   c.Iterations,
		WaitDuration: c.Wait,
		URL:          c.URL,
		FilePath:     c.File,
		BufferSize:   c.BufferSize,
		PoolWorkers:  c.PoolWorkers,
		PinWorkers:   c.PinWorkers,
		RateLimit:    c.RateLimit,
		RateBurst:    c.RateBurst,
		TrialTimeout: c.TrialTimeout,
	}, nil
}

// ParseLogLevel accepts debug, info, warn and error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log-level: %w", err)
	}
	return level, nil
}
