package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/taskbench/asyncio"
	"github.com/utkarsh5026/taskbench/dispatch"
	"github.com/utkarsh5026/taskbench/harness"
	"github.com/utkarsh5026/taskbench/sink"
	"github.com/utkarsh5026/taskbench/workload"
)

// ErrNoFilePath is returned when a file workload is requested without a
// path to read.
var ErrNoFilePath = errors.New("bench: file workload needs a file path")

// Env holds the process-wide resources a suite shares across trials.
type Env struct {
	// Dispatch is the single-threaded executor HTTP completions run on.
	Dispatch *dispatch.Executor
	// FilePool runs positional file reads.
	FilePool *dispatch.Executor
	// TaskPool runs tasks for the pool launcher.
	TaskPool *dispatch.Executor

	Client *asyncio.Client
	Sink   *sink.Blackhole

	cfg    Config
	logger *slog.Logger
}

// NewEnv starts every executor. On failure the ones already started are
// shut down again.
func NewEnv(ctx context.Context, cfg Config, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	onPanic := func(name string) dispatch.Option {
		return dispatch.WithPanicHandler(func(r any, stack []byte) {
			logger.Error("job panicked", slog.String("executor", name), slog.Any("panic", r), slog.String("stack", string(stack)))
		})
	}

	poolOpts := []dispatch.Option{onPanic("file-pool")}
	taskOpts := []dispatch.Option{onPanic("task-pool"), dispatch.WithRateLimit(cfg.RateLimit, cfg.RateBurst)}
	if cfg.PoolWorkers > 0 {
		poolOpts = append(poolOpts, dispatch.WithWorkerCount(cfg.PoolWorkers))
		taskOpts = append(taskOpts, dispatch.WithWorkerCount(cfg.PoolWorkers))
	}
	if cfg.PinWorkers {
		taskOpts = append(taskOpts, dispatch.WithPinnedWorkers())
	}

	env := &Env{
		Dispatch: dispatch.NewSingleThread(onPanic("dispatch")),
		FilePool: dispatch.NewGeneralPool(poolOpts...),
		TaskPool: dispatch.NewGeneralPool(taskOpts...),
		Sink:     sink.New(),
		cfg:      cfg,
		logger:   logger,
	}

	var g errgroup.Group
	for _, exec := range env.executors() {
		g.Go(func() error { return exec.Start(ctx) })
	}
	if err := g.Wait(); err != nil {
		_ = env.Close(time.Second)
		return nil, fmt.Errorf("bench: start executors: %w", err)
	}

	env.Client = asyncio.NewClient(env.Dispatch)
	return env, nil
}

func (e *Env) executors() []*dispatch.Executor {
	return []*dispatch.Executor{e.Dispatch, e.FilePool, e.TaskPool}
}

// Workload builds the workload of the given kind over the shared resources.
func (e *Env) Workload(kind workload.Kind) (workload.Workload, error) {
	switch kind {
	case workload.KindWait:
		return workload.NewWait(e.cfg.WaitDuration, e.Sink), nil
	case workload.KindNetwork:
		return workload.NewNetwork(e.cfg.URL, e.Client, e.Sink), nil
	case workload.KindFileRead:
		if e.cfg.FilePath == "" {
			return nil, ErrNoFilePath
		}
		return workload.NewFileRead(e.cfg.FilePath, e.cfg.BufferSize, e.FilePool, e.Sink), nil
	default:
		return nil, fmt.Errorf("%w: %v", workload.ErrUnknownKind, kind)
	}
}

// Launcher resolves a launcher name; pool launchers use TaskPool.
func (e *Env) Launcher(name string) (harness.Launcher, error) {
	l, ok := harness.ParseLauncher(name, e.TaskPool)
	if !ok {
		return nil, fmt.Errorf("bench: unknown launcher %q", name)
	}
	return l, nil
}

// Close shuts every executor down, waiting up to timeout for each, and
// drops idle HTTP connections.
func (e *Env) Close(timeout time.Duration) error {
	if e.Client != nil {
		e.Client.CloseIdleConnections()
	}

	var errs []error
	for _, exec := range e.executors() {
		if err := exec.Shutdown(timeout); err != nil && !errors.Is(err, dispatch.ErrNotStarted) && !errors.Is(err, dispatch.ErrShutdown) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
