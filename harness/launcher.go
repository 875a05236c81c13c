package harness

import (
	"context"
	"errors"
	"runtime"

	"github.com/utkarsh5026/taskbench/dispatch"
)

// Launcher decides what a started task runs on.
type Launcher interface {
	Name() string
	Launch(ctx context.Context, run func(context.Context)) error
}

// GoroutineLauncher runs every task on its own goroutine.
type GoroutineLauncher struct{}

func (GoroutineLauncher) Name() string { return "goroutine" }

func (GoroutineLauncher) Launch(ctx context.Context, run func(context.Context)) error {
	go run(ctx)
	return nil
}

// LockedThreadLauncher runs every task on a goroutine wired to its own OS
// thread for the task's whole lifetime, so each task costs a thread.
type LockedThreadLauncher struct{}

func (LockedThreadLauncher) Name() string { return "os-thread" }

func (LockedThreadLauncher) Launch(ctx context.Context, run func(context.Context)) error {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		run(ctx)
	}()
	return nil
}

// PoolLauncher submits every task to an executor, so tasks share its few
// workers. The executor must not be one the workload itself waits on.
type PoolLauncher struct {
	Executor *dispatch.Executor
}

var errNoExecutor = errors.New("harness: pool launcher has no executor")

func (p PoolLauncher) Name() string { return "pool" }

func (p PoolLauncher) Launch(ctx context.Context, run func(context.Context)) error {
	if p.Executor == nil {
		return errNoExecutor
	}
	return p.Executor.Submit(func(context.Context) { run(ctx) })
}

// ParseLauncher maps a launcher name to a launcher. Pool launchers are
// bound to exec.
func ParseLauncher(name string, exec *dispatch.Executor) (Launcher, bool) {
	switch name {
	case "", "goroutine":
		return GoroutineLauncher{}, true
	case "os-thread", "thread", "locked":
		return LockedThreadLauncher{}, true
	case "pool":
		return PoolLauncher{Executor: exec}, true
	default:
		return nil, false
	}
}
