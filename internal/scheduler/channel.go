package scheduler

import (
	"context"
	"sync/atomic"

	"github.com/utkarsh5026/taskbench/internal/types"
)

// channelStrategy distributes jobs to per-worker channels in round-robin
// order. With a single worker it is a plain FIFO dispatch thread.
type channelStrategy struct {
	config    *Config
	taskChans []chan *types.SubmittedJob
	counter   atomic.Int64
	quit      chan struct{}
}

func newChannelStrategy(conf *Config) *channelStrategy {
	n := max(conf.WorkerCount, 1)
	c := &channelStrategy{
		config:    conf,
		taskChans: make([]chan *types.SubmittedJob, n),
		quit:      make(chan struct{}),
	}

	for i := range n {
		c.taskChans[i] = make(chan *types.SubmittedJob, conf.TaskBuffer)
	}

	return c
}

// Submit sends the job to the next worker channel.
func (s *channelStrategy) Submit(job *types.SubmittedJob) error {
	select {
	case <-s.quit:
		return ErrSchedulerClosed
	default:
	}

	select {
	case s.taskChans[s.next()] <- job:
		return nil
	case <-s.quit:
		return ErrSchedulerClosed
	}
}

// Shutdown closes every worker channel. The caller guarantees that no
// Submit is in flight.
func (s *channelStrategy) Shutdown() {
	close(s.quit)
	for _, ch := range s.taskChans {
		close(ch)
	}
}

// Worker executes jobs from its own channel until the channel is closed and
// empty. On cancellation it drains whatever is still buffered.
func (s *channelStrategy) Worker(ctx context.Context, workerID int64) error {
	release := setupWorker(s.config, workerID)
	defer release()

	ch := s.taskChans[workerID]
	for {
		select {
		case <-ctx.Done():
			s.drain(ctx, ch)
			return ctx.Err()
		case job, ok := <-ch:
			if !ok {
				return nil
			}
			executeSubmitted(ctx, job, s.config)
		}
	}
}

func (s *channelStrategy) drain(ctx context.Context, ch <-chan *types.SubmittedJob) {
	for {
		select {
		case job, ok := <-ch:
			if !ok {
				return
			}
			executeSubmitted(ctx, job, s.config)
		default:
			return
		}
	}
}

func (s *channelStrategy) next() int64 {
	return s.counter.Add(1) % int64(len(s.taskChans))
}
