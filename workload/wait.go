package workload

import (
	"context"
	"time"

	"github.com/utkarsh5026/taskbench/internal/cpu"
	"github.com/utkarsh5026/taskbench/sink"
)

// DefaultWaitDuration is the wait used when none is configured.
const DefaultWaitDuration = 100 * time.Millisecond

// Wait suspends every task on a timer.
type Wait struct {
	Duration time.Duration
	Sink     *sink.Blackhole
}

// NewWait builds a wait workload; a non-positive d uses DefaultWaitDuration.
func NewWait(d time.Duration, bh *sink.Blackhole) *Wait {
	if d <= 0 {
		d = DefaultWaitDuration
	}
	return &Wait{Duration: d, Sink: bh}
}

func (w *Wait) Kind() Kind   { return KindWait }
func (w *Wait) Name() string { return "wait" }

// Prepare returns a unit that waits and then consumes the id of the OS
// thread it resumed on. Goroutine ids are not exposed, so the thread stands
// in for the executing worker.
func (w *Wait) Prepare(int) Unit {
	return func(ctx context.Context) error {
		t := time.NewTimer(w.Duration)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return wrap(w.Name(), ctx.Err())
		}
		w.Sink.Consume(cpu.ThreadID())
		return nil
	}
}
