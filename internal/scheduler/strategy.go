package scheduler

import (
	"context"

	"github.com/utkarsh5026/taskbench/internal/types"
)

// Strategy defines how jobs reach workers.
type Strategy interface {
	// Submit hands a job to the strategy. It may block while queues are full.
	Submit(job *types.SubmittedJob) error

	// Shutdown stops accepting jobs. Workers drain what was already
	// submitted and then return.
	Shutdown()

	// Worker runs the loop of one worker until shutdown or ctx is done.
	Worker(ctx context.Context, workerID int64) error
}

// New builds the strategy named by conf.Strategy.
func New(conf *Config) Strategy {
	switch conf.Strategy {
	case StrategyWorkStealing:
		return newWorkStealingStrategy(defaultLocalQueueCapacity, conf)
	default:
		return newChannelStrategy(conf)
	}
}
