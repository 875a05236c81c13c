package harness

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/taskbench/workload"
)

// State is the lifecycle position of a task.
type State int32

const (
	StateCreated State = iota
	StateStarted
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Task is one deferred unit of work. It does nothing until Start.
type Task struct {
	index    int
	unit     workload.Unit
	launcher Launcher

	state atomic.Int32
	done  chan struct{}

	// Written before done is closed, read after.
	err     error
	started time.Time
	ended   time.Time
}

func newTask(index int, unit workload.Unit, launcher Launcher) *Task {
	return &Task{
		index:    index,
		unit:     unit,
		launcher: launcher,
		done:     make(chan struct{}),
	}
}

// Start launches the task. A second call returns ErrAlreadyStarted. If the
// launcher refuses the task, the task is marked failed with that error.
func (t *Task) Start(ctx context.Context) error {
	if !t.state.CompareAndSwap(int32(StateCreated), int32(StateStarted)) {
		return ErrAlreadyStarted
	}

	t.started = time.Now()
	if err := t.launcher.Launch(ctx, t.run); err != nil {
		t.finish(fmt.Errorf("launch task %d: %w", t.index, err))
		return err
	}
	return nil
}

func (t *Task) run(ctx context.Context) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		t.finish(err)
	}()

	err = t.unit(ctx)
}

func (t *Task) finish(err error) {
	t.ended = time.Now()
	t.err = err
	if err != nil {
		t.state.Store(int32(StateFailed))
	} else {
		t.state.Store(int32(StateCompleted))
	}
	close(t.done)
}

// Join blocks until the task has completed or failed and returns its
// failure. Joining an unstarted task returns ErrNotStarted.
func (t *Task) Join() error {
	if t.State() == StateCreated {
		return ErrNotStarted
	}
	<-t.done
	return t.err
}

// Done returns a channel closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Index returns the creation index.
func (t *Task) Index() int {
	return t.index
}

// Err returns the failure of a finished task, or nil.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Latency returns the time from Start to completion, or 0 while the task
// is still running.
func (t *Task) Latency() time.Duration {
	select {
	case <-t.done:
		return t.ended.Sub(t.started)
	default:
		return 0
	}
}

// TaskSet holds the tasks of one trial in creation order.
type TaskSet struct {
	tasks []*Task
}

// Len returns the number of tasks.
func (s *TaskSet) Len() int {
	return len(s.tasks)
}

// At returns the task created at index i.
func (s *TaskSet) At(i int) *Task {
	return s.tasks[i]
}

// Tasks returns the tasks in creation order.
func (s *TaskSet) Tasks() []*Task {
	return s.tasks
}

// Failed counts tasks in StateFailed.
func (s *TaskSet) Failed() int {
	n := 0
	for _, t := range s.tasks {
		if t.State() == StateFailed {
			n++
		}
	}
	return n
}

// Latencies returns the latency of every finished task, including ones
// the clock measured as zero.
func (s *TaskSet) Latencies() []time.Duration {
	out := make([]time.Duration, 0, len(s.tasks))
	for _, t := range s.tasks {
		select {
		case <-t.done:
			out = append(out, t.ended.Sub(t.started))
		default:
		}
	}
	return out
}
