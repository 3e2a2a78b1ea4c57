package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"GatePass/internal/models"
)

// Memory is the in-process Queue used by tests and broker-less deployments.
// Pending jobs sit in a time-ordered heap; a single dispatch goroutine moves
// each eligible job onto an unbuffered channel, so a job reaches exactly one
// claimant.
type Memory struct {
	retry RetryPolicy

	mu      sync.Mutex
	pending jobHeap

	wake  chan struct{}
	ready chan models.DispatchJob
	done  chan struct{}

	closeOnce sync.Once
}

func NewMemory(retry RetryPolicy) *Memory {
	q := &Memory{
		retry: retry,
		wake:  make(chan struct{}, 1),
		ready: make(chan models.DispatchJob),
		done:  make(chan struct{}),
	}
	go q.dispatch()
	return q
}

func (q *Memory) Enqueue(ctx context.Context, job models.DispatchJob, delay time.Duration) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	job.EligibleAt = time.Now().Add(delay)
	if job.MaxAttempts == 0 {
		job.MaxAttempts = q.retry.MaxAttempts
	}

	q.mu.Lock()
	heap.Push(&q.pending, job)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Claim blocks until a job becomes eligible or the context or queue ends.
func (q *Memory) Claim(ctx context.Context) (models.DispatchJob, error) {
	select {
	case job := <-q.ready:
		return job, nil
	case <-ctx.Done():
		return models.DispatchJob{}, ctx.Err()
	case <-q.done:
		return models.DispatchJob{}, ErrClosed
	}
}

// Complete acknowledges a settled job. The memory queue removed the job on
// claim, so there is nothing left to do.
func (q *Memory) Complete(ctx context.Context, job models.DispatchJob) error {
	return nil
}

// Fail bumps the attempt count and re-enqueues with exponential backoff
// while the policy allows it. Returns false when the job is dropped; the
// caller owns writing the terminal outcome.
func (q *Memory) Fail(ctx context.Context, job models.DispatchJob, cause error) (bool, error) {
	job.Attempt++
	if !q.retry.Retryable(job, cause) {
		return false, nil
	}
	if err := q.Enqueue(ctx, job, q.retry.NextDelay(job.Attempt)); err != nil {
		return false, err
	}
	return true, nil
}

// Close stops the dispatch loop. Jobs still pending are discarded; the email
// log remains the ground truth for resuming a campaign.
func (q *Memory) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *Memory) dispatch() {
	for {
		q.mu.Lock()
		var (
			job     models.DispatchJob
			haveJob bool
			wait    time.Duration
			haveTTL bool
		)
		if q.pending.Len() > 0 {
			next := q.pending[0]
			wait = time.Until(next.EligibleAt)
			if wait <= 0 {
				job = heap.Pop(&q.pending).(models.DispatchJob)
				haveJob = true
			} else {
				haveTTL = true
			}
		}
		q.mu.Unlock()

		switch {
		case haveJob:
			select {
			case q.ready <- job:
			case <-q.done:
				return
			}
		case haveTTL:
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-q.wake:
				timer.Stop()
			case <-q.done:
				timer.Stop()
				return
			}
		default:
			select {
			case <-q.wake:
			case <-q.done:
				return
			}
		}
	}
}

// jobHeap orders pending jobs by eligible time, earliest first.
type jobHeap []models.DispatchJob

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].EligibleAt.Before(h[j].EligibleAt) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(models.DispatchJob)) }

func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	*h = old[:n-1]
	return job
}
