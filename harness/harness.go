// Package harness drives one benchmark trial: it creates N deferred tasks,
// starts all of them in creation order, then joins all of them in creation
// order. A trial fails if any of its tasks failed.
package harness

import (
	"errors"
	"fmt"

	"github.com/utkarsh5026/taskbench/workload"
)

var (
	ErrInvalidLevel   = errors.New("harness: level must be at least 1")
	ErrNoWorkload     = errors.New("harness: no workload configured")
	ErrAlreadyStarted = errors.New("harness: task already started")
	ErrNotStarted     = errors.New("harness: task not started")
	ErrTaskPanicked   = errors.New("harness: task panicked")
)

// Mode is how a trial is measured.
type Mode = workload.Mode

const (
	ModeThroughput = workload.ModeThroughput
	ModeSingleShot = workload.ModeSingleShot
)

// TrialConfig describes one trial. It is not modified by the driver.
type TrialConfig struct {
	// Number of concurrent tasks.
	Level int

	// Operation every task performs.
	Workload workload.Workload

	// Measurement mode; the driver itself runs both modes the same way.
	Mode Mode

	// How tasks are started. Nil means GoroutineLauncher.
	Launcher Launcher
}

// Validate checks the level and workload.
func (c TrialConfig) Validate() error {
	if c.Level < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, c.Level)
	}
	if c.Workload == nil {
		return ErrNoWorkload
	}
	return nil
}

// TrialError reports a trial in which at least one task failed. Err joins
// every task failure, so errors.Is and errors.As see each of them.
type TrialError struct {
	Failed int
	Total  int
	Err    error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("harness: %d of %d tasks failed: %v", e.Failed, e.Total, e.Err)
}

func (e *TrialError) Unwrap() error {
	return e.Err
}
