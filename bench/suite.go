// Package bench runs the benchmark suite behind the CLI: every workload at
// every concurrency level on every launcher, with warm-up and measured
// trials, aggregated into histograms.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/utkarsh5026/taskbench/harness"
	"github.com/utkarsh5026/taskbench/workload"
)

// Result is the outcome of one (workload, level, launcher) case. A failed
// case has Err set and no timings.
type Result struct {
	Workload string
	Kind     workload.Kind
	Level    int
	Launcher string
	Mode     workload.Mode

	Warmup int
	Trials int

	// Wall time of whole trials.
	Trial Stats
	// Start-to-finish time of individual tasks.
	Task Stats

	// Tasks completed per second, from the mean trial time.
	OpsPerSec float64

	GC GCProfile

	Err error
}

// Failed reports whether the case produced no timing.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Suite runs the cases described by its Config in an Env.
type Suite struct {
	cfg    Config
	env    *Env
	driver *harness.Driver
	logger *slog.Logger
}

// NewSuite binds cfg to env. A nil logger discards.
func NewSuite(cfg Config, env *Env, logger *slog.Logger) *Suite {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Suite{
		cfg:    cfg,
		env:    env,
		driver: harness.NewDriver(logger),
		logger: logger,
	}
}

// Run executes every case in order. Case failures are reported in the
// results; the returned error is only set when ctx ends the run early.
func (s *Suite) Run(ctx context.Context) ([]Result, error) {
	checkFileLimit(s.logger, s.cfg)

	bar := newProgressBar(s.cfg.Progress, s.cfg.plan())
	defer finishProgressBar(bar)

	results := make([]Result, 0, s.cfg.plan())
	for _, kind := range s.cfg.Kinds {
		for _, level := range s.cfg.Levels {
			for _, launcher := range s.cfg.Launchers {
				if err := ctx.Err(); err != nil {
					return results, err
				}

				describe(bar, fmt.Sprintf("%s x%d (%s)", kind, level, launcher))
				res := s.runCase(ctx, kind, level, launcher)
				results = append(results, res)
				advance(bar)

				if res.Failed() {
					s.logger.Warn("case failed",
						slog.String("workload", kind.String()),
						slog.Int("level", level),
						slog.String("launcher", launcher),
						slog.Any("error", res.Err))
				} else {
					s.logger.Info("case finished",
						slog.String("workload", kind.String()),
						slog.Int("level", level),
						slog.String("launcher", launcher),
						slog.Duration("mean", res.Trial.Mean),
						slog.Float64("ops_per_sec", res.OpsPerSec))
				}
			}
		}
	}
	return results, nil
}

func (s *Suite) runCase(ctx context.Context, kind workload.Kind, level int, launcherName string) Result {
	mode := kind.DefaultMode()
	res := Result{
		Workload: kind.String(),
		Kind:     kind,
		Level:    level,
		Launcher: launcherName,
		Mode:     mode,
	}

	wl, err := s.env.Workload(kind)
	if err != nil {
		res.Err = err
		return res
	}
	launcher, err := s.env.Launcher(launcherName)
	if err != nil {
		res.Err = err
		return res
	}

	warmup, iterations := s.cfg.Warmup, s.cfg.Iterations
	if mode == workload.ModeSingleShot {
		warmup, iterations = 1, 1
	}
	iterations = max(iterations, 1)
	res.Warmup = warmup

	cfg := harness.TrialConfig{Level: level, Workload: wl, Mode: mode, Launcher: launcher}

	for range warmup {
		if _, err := s.trial(ctx, cfg); err != nil {
			res.Err = fmt.Errorf("warm-up: %w", err)
			return res
		}
	}

	trialHist, taskHist := newHistogram(), newHistogram()
	runtime.GC()
	sampler := startGCSampler()

	for range iterations {
		set, elapsed, err := s.timedTrial(ctx, cfg)
		if err != nil {
			sampler.finish(0)
			res.Err = err
			return res
		}
		trialHist.record(elapsed)
		for _, d := range set.Latencies() {
			taskHist.record(d)
		}
	}

	res.GC = sampler.finish(iterations)
	res.Trials = iterations
	res.Trial = trialHist.stats()
	res.Task = taskHist.stats()
	if res.Trial.Mean > 0 {
		res.OpsPerSec = float64(level) / res.Trial.Mean.Seconds()
	}
	return res
}

func (s *Suite) timedTrial(ctx context.Context, cfg harness.TrialConfig) (*harness.TaskSet, time.Duration, error) {
	start := time.Now()
	set, err := s.trial(ctx, cfg)
	return set, time.Since(start), err
}

func (s *Suite) trial(ctx context.Context, cfg harness.TrialConfig) (*harness.TaskSet, error) {
	if s.cfg.TrialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TrialTimeout)
		defer cancel()
	}
	return s.driver.RunTrial(ctx, cfg)
}
