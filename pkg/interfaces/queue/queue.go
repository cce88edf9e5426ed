package queue

import (
	"context"
	"errors"
)

// ErrFull signals that a bounded queue rejected the job.
var ErrFull = errors.New("queue: full")

// ErrClosed signals that the queue no longer accepts jobs.
var ErrClosed = errors.New("queue: closed")

// Job is one unit of background work. Key groups jobs that must run in
// submission order relative to each other; an empty key has no ordering.
type Job struct {
	Key  string
	Name string
	Run  func(ctx context.Context) error
}

// Queue accepts background jobs without blocking the caller.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Inline runs jobs synchronously on the caller's goroutine (tests, disabled pools).
type Inline struct{}

var _ Queue = (*Inline)(nil)

func (Inline) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return nil
	}
	return job.Run(ctx)
}
