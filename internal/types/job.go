package types

import "context"

// Job is a unit of work run by a dispatch worker. Jobs report their own
// outcome (usually by resolving a Future); the worker ignores it.
type Job func(ctx context.Context)

// SubmittedJob is a Job accepted by a scheduling strategy.
type SubmittedJob struct {
	Job Job
	ID  int64
}

// NewSubmittedJob wraps job with its submission id.
func NewSubmittedJob(job Job, id int64) *SubmittedJob {
	return &SubmittedJob{Job: job, ID: id}
}
