// Package queue holds dispatch jobs until their eligible time and hands each
// one to exactly one worker at a time. The delivery contract is
// at-least-once: a worker that dies between sending and logging can cause a
// job to run again, which the email log's recomputation semantics absorb.
package queue

import (
	"context"
	"errors"
	"time"

	"GatePass/internal/models"
)

// ErrClosed is returned by Claim once the queue has shut down.
var ErrClosed = errors.New("queue closed")

// Queue is the dispatch job store. Enqueue schedules a job to become
// eligible after delay; Claim blocks until an eligible job can be handed to
// the caller exclusively; Complete acknowledges a settled job; Fail records
// a handler failure and reports whether the job was re-enqueued for another
// attempt or dropped.
type Queue interface {
	Enqueue(ctx context.Context, job models.DispatchJob, delay time.Duration) error
	Claim(ctx context.Context) (models.DispatchJob, error)
	Complete(ctx context.Context, job models.DispatchJob) error
	Fail(ctx context.Context, job models.DispatchJob, cause error) (bool, error)
}

type permanence interface {
	Permanent() bool
}

// IsPermanent reports whether an error in the chain marks itself as not
// worth retrying, e.g. a rejected recipient address.
func IsPermanent(err error) bool {
	var p permanence
	if errors.As(err, &p) {
		return p.Permanent()
	}
	return false
}
