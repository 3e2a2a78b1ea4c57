package queue

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"GatePass/internal/models"
)

// RetryPolicy bounds how often a failing job is re-enqueued and how far
// apart the attempts are spaced.
type RetryPolicy struct {
	BaseDelay   time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy retries twice after the first failure, 5s then 10s out.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   5 * time.Second,
		MaxAttempts: 3,
	}
}

// NextDelay returns the re-enqueue delay after the given failed attempt
// (1-based): BaseDelay × 2^(attempt-1). Randomization is disabled so the
// sequence is deterministic.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 24 * time.Hour
	b.MaxElapsedTime = 0
	b.Reset()

	d := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Retryable reports whether a job that just finished its Attempt-th try
// should be re-enqueued. Permanent causes are never retried, even with
// attempts remaining. A job carrying its own MaxAttempts overrides the
// policy's limit.
func (p RetryPolicy) Retryable(job models.DispatchJob, cause error) bool {
	if IsPermanent(cause) {
		return false
	}
	limit := job.MaxAttempts
	if limit == 0 {
		limit = p.MaxAttempts
	}
	return job.Attempt < limit
}
