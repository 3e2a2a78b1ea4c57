package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"GatePass/internal/models"
)

type permErr struct{}

func (permErr) Error() string   { return "address rejected" }
func (permErr) Permanent() bool { return true }

func TestNextDelay_ExponentialFromBase(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 5*time.Second, p.NextDelay(1))
	assert.Equal(t, 10*time.Second, p.NextDelay(2))
	assert.Equal(t, 20*time.Second, p.NextDelay(3))
}

func TestNextDelay_Deterministic(t *testing.T) {
	p := DefaultRetryPolicy()
	for i := 0; i < 10; i++ {
		assert.Equal(t, 10*time.Second, p.NextDelay(2))
	}
}

func TestRetryable_StopsAtMaxAttempts(t *testing.T) {
	p := DefaultRetryPolicy()
	cause := errors.New("smtp timeout")

	assert.True(t, p.Retryable(models.DispatchJob{Attempt: 1}, cause))
	assert.True(t, p.Retryable(models.DispatchJob{Attempt: 2}, cause))
	assert.False(t, p.Retryable(models.DispatchJob{Attempt: 3}, cause), "a job is never retried a 4th time")
	assert.False(t, p.Retryable(models.DispatchJob{Attempt: 4}, cause))
}

func TestRetryable_JobMaxAttemptsOverridesPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	cause := errors.New("smtp timeout")

	assert.False(t, p.Retryable(models.DispatchJob{Attempt: 1, MaxAttempts: 1}, cause))
	assert.True(t, p.Retryable(models.DispatchJob{Attempt: 3, MaxAttempts: 5}, cause))
}

func TestRetryable_PermanentNeverRetried(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.False(t, p.Retryable(models.DispatchJob{Attempt: 1}, permErr{}))
}

func TestIsPermanent_ChecksWrappedChain(t *testing.T) {
	assert.True(t, IsPermanent(permErr{}))
	assert.True(t, IsPermanent(errors.Join(errors.New("outer"), permErr{})))
	assert.False(t, IsPermanent(errors.New("transient")))
	assert.False(t, IsPermanent(nil))
}
