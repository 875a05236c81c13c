package harness

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Driver runs trials. The zero value is usable and logs nothing.
type Driver struct {
	logger *slog.Logger
}

// NewDriver returns a driver that reports trial outcomes to logger at
// debug level. A nil logger discards.
func NewDriver(logger *slog.Logger) *Driver {
	return &Driver{logger: logger}
}

func (d *Driver) log() *slog.Logger {
	if d == nil || d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// RunTrial creates cfg.Level tasks, starts them all, then joins them all.
// It returns once every task has finished. If any task failed the task set
// is returned together with a *TrialError.
//
// ctx is handed to every unit; the driver imposes no timeout of its own.
func (d *Driver) RunTrial(ctx context.Context, cfg TrialConfig) (*TaskSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	launcher := cfg.Launcher
	if launcher == nil {
		launcher = GoroutineLauncher{}
	}

	set := &TaskSet{tasks: make([]*Task, cfg.Level)}
	for i := range cfg.Level {
		set.tasks[i] = newTask(i, cfg.Workload.Prepare(i), launcher)
	}

	start := time.Now()

	// A task the launcher refused is already failed; Join reports it below.
	for _, t := range set.tasks {
		_ = t.Start(ctx)
	}

	var errs []error
	for _, t := range set.tasks {
		if err := t.Join(); err != nil {
			errs = append(errs, err)
		}
	}

	elapsed := time.Since(start)
	log := d.log().With(
		slog.String("workload", cfg.Workload.Name()),
		slog.Int("level", cfg.Level),
		slog.String("launcher", launcher.Name()),
		slog.Duration("elapsed", elapsed),
	)

	if len(errs) > 0 {
		log.Debug("trial failed", slog.Int("failed", len(errs)))
		return set, &TrialError{Failed: len(errs), Total: cfg.Level, Err: errors.Join(errs...)}
	}

	log.Debug("trial completed")
	return set, nil
}
