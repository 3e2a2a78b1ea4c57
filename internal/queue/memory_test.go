package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GatePass/internal/models"
)

// fast retry policy so tests don't sit through real backoff.
func testPolicy() RetryPolicy {
	return RetryPolicy{BaseDelay: 5 * time.Millisecond, MaxAttempts: 3}
}

func claimWithin(t *testing.T, q *Memory, d time.Duration) models.DispatchJob {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	job, err := q.Claim(ctx)
	require.NoError(t, err)
	return job
}

func TestMemory_DeliversEligibleJob(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "j1"}, 0))
	job := claimWithin(t, q, time.Second)
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, 3, job.MaxAttempts)
}

func TestMemory_HoldsJobUntilEligible(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "j1"}, 80*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := q.Claim(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "job must not be claimable before its delay")

	job := claimWithin(t, q, time.Second)
	assert.Equal(t, "j1", job.ID)
}

func TestMemory_EarliestEligibleFirst(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "later"}, 60*time.Millisecond))
	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "sooner"}, 20*time.Millisecond))

	first := claimWithin(t, q, time.Second)
	second := claimWithin(t, q, time.Second)
	assert.Equal(t, "sooner", first.ID)
	assert.Equal(t, "later", second.ID)
}

func TestMemory_ExclusiveClaim(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: fmt.Sprintf("j%02d", i)}, 0))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		wg   sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := q.Claim(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[job.ID]++
				if len(seen) == n {
					cancel()
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for id, count := range seen {
		assert.Equal(t, 1, count, "job %s claimed more than once", id)
	}
}

func TestMemory_FailRetriesWithBackoffThenDrops(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	cause := errors.New("smtp timeout")
	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "j1"}, 0))

	job := claimWithin(t, q, time.Second)
	assert.Zero(t, job.Attempt)

	retried, err := q.Fail(context.Background(), job, cause)
	require.NoError(t, err)
	assert.True(t, retried, "first failure re-enqueues")

	job = claimWithin(t, q, time.Second)
	assert.Equal(t, 1, job.Attempt)

	retried, err = q.Fail(context.Background(), job, cause)
	require.NoError(t, err)
	assert.True(t, retried, "second failure re-enqueues")

	job = claimWithin(t, q, time.Second)
	assert.Equal(t, 2, job.Attempt)

	retried, err = q.Fail(context.Background(), job, cause)
	require.NoError(t, err)
	assert.False(t, retried, "third failure is terminal")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = q.Claim(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "dropped job must not reappear")
}

func TestMemory_FailHonorsJobMaxAttempts(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "j1", MaxAttempts: 1}, 0))
	job := claimWithin(t, q, time.Second)
	assert.Equal(t, 1, job.MaxAttempts, "explicit budget survives enqueue")

	retried, err := q.Fail(context.Background(), job, errors.New("smtp timeout"))
	require.NoError(t, err)
	assert.False(t, retried, "single-attempt job drops on first failure")
}

func TestMemory_FailDropsPermanentImmediately(t *testing.T) {
	q := NewMemory(testPolicy())
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "j1"}, 0))
	job := claimWithin(t, q, time.Second)

	retried, err := q.Fail(context.Background(), job, permErr{})
	require.NoError(t, err)
	assert.False(t, retried)
}

func TestMemory_CloseUnblocksClaim(t *testing.T) {
	q := NewMemory(testPolicy())

	done := make(chan error, 1)
	go func() {
		_, err := q.Claim(context.Background())
		done <- err
	}()

	q.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Claim did not return after Close")
	}

	assert.ErrorIs(t, q.Enqueue(context.Background(), models.DispatchJob{ID: "j1"}, 0), ErrClosed)
}
