package campaign_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"GatePass/internal/campaign"
	"GatePass/internal/models"
	"GatePass/internal/queue"
	"GatePass/internal/schedule"
	"GatePass/internal/store"
)

// recordingQueue captures enqueued jobs instead of dispatching them.
type recordingQueue struct {
	jobs   []models.DispatchJob
	delays []time.Duration
}

func (q *recordingQueue) Enqueue(ctx context.Context, job models.DispatchJob, delay time.Duration) error {
	q.jobs = append(q.jobs, job)
	q.delays = append(q.delays, delay)
	return nil
}

func (q *recordingQueue) Claim(ctx context.Context) (models.DispatchJob, error) {
	return models.DispatchJob{}, fmt.Errorf("not implemented")
}

func (q *recordingQueue) Complete(ctx context.Context, job models.DispatchJob) error { return nil }

func (q *recordingQueue) Fail(ctx context.Context, job models.DispatchJob, cause error) (bool, error) {
	return false, nil
}

// refusingQueue rejects enqueues for the configured participants, or for
// everyone when all is set.
type refusingQueue struct {
	recordingQueue
	all    bool
	refuse map[string]bool
}

func (q *refusingQueue) Enqueue(ctx context.Context, job models.DispatchJob, delay time.Duration) error {
	if q.all || q.refuse[job.ParticipantID] {
		return errors.New("channel closed")
	}
	return q.recordingQueue.Enqueue(ctx, job, delay)
}

func newLauncher(t *testing.T, db *store.Memory, q queue.Queue) *campaign.Launcher {
	t.Helper()
	return &campaign.Launcher{
		Campaigns:    db,
		Participants: db,
		Logs:         db,
		Queue:        q,
		Policy:       schedule.DefaultPolicy(),
		Logger:       zap.NewNop(),
	}
}

func seedCampaign(t *testing.T, db *store.Memory, status models.CampaignStatus) models.Campaign {
	t.Helper()
	c, err := db.CreateCampaign(context.Background(), models.Campaign{
		ID:           "camp-1",
		Name:         "Launch",
		Subject:      "Your pass",
		BodyTemplate: "Hello {{name}}",
		Status:       models.CampaignDraft,
	})
	require.NoError(t, err)
	if status != models.CampaignDraft {
		_, err := db.BeginSend(context.Background(), c.ID, 0)
		require.NoError(t, err)
	}
	return c
}

func seedParticipants(t *testing.T, db *store.Memory, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := db.CreateParticipant(context.Background(), models.Participant{
			ID:       fmt.Sprintf("p-%03d", i),
			Name:     fmt.Sprintf("Guest %d", i),
			Email:    fmt.Sprintf("guest%d@example.com", i),
			Category: "General",
		})
		require.NoError(t, err)
	}
}

func TestStart_QueuesOneJobPerParticipant(t *testing.T) {
	db := store.NewMemory()
	q := &recordingQueue{}
	seedCampaign(t, db, models.CampaignDraft)
	seedParticipants(t, db, 3)

	result, err := newLauncher(t, db, q).Start(context.Background(), "camp-1", "organizer@example.com")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalQueued)
	assert.Equal(t, 30*time.Second, result.EstimatedDuration)
	require.Len(t, q.jobs, 3)

	for i, job := range q.jobs {
		assert.Equal(t, "camp-1", job.CampaignID)
		assert.Equal(t, fmt.Sprintf("p-%03d", i), job.ParticipantID)
		assert.Equal(t, "organizer@example.com", job.OrganizerBcc)
		assert.Equal(t, time.Duration(i)*time.Second, q.delays[i])
	}

	c, err := db.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSending, c.Status)
	assert.Equal(t, 3, c.TotalRecipients)
	assert.Zero(t, c.SentCount)
	assert.Zero(t, c.FailedCount)
}

func TestStart_NotDraftFailsWithoutMutating(t *testing.T) {
	db := store.NewMemory()
	q := &recordingQueue{}
	seedCampaign(t, db, models.CampaignSending)
	seedParticipants(t, db, 2)

	before, err := db.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)

	_, err = newLauncher(t, db, q).Start(context.Background(), "camp-1", "organizer@example.com")
	assert.ErrorIs(t, err, campaign.ErrCampaignNotDraft)
	assert.Empty(t, q.jobs)

	after, err := db.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, before.TotalRecipients, after.TotalRecipients)
	assert.Equal(t, before.SentCount, after.SentCount)
	assert.Equal(t, before.FailedCount, after.FailedCount)
}

func TestStart_MissingCampaign(t *testing.T) {
	db := store.NewMemory()
	q := &recordingQueue{}
	seedParticipants(t, db, 1)

	_, err := newLauncher(t, db, q).Start(context.Background(), "missing", "organizer@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, q.jobs)
}

func TestStart_AllEnqueuesRefusedSettlesFailed(t *testing.T) {
	db := store.NewMemory()
	q := &refusingQueue{all: true}
	seedCampaign(t, db, models.CampaignDraft)
	seedParticipants(t, db, 3)

	result, err := newLauncher(t, db, q).Start(context.Background(), "camp-1", "organizer@example.com")
	require.NoError(t, err)
	assert.Zero(t, result.TotalQueued)

	c, err := db.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignFailed, c.Status, "a run with no queued jobs must not stay in sending")
	assert.Equal(t, 3, c.FailedCount)

	logs, err := db.ListLogsByCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, models.OutcomeFailed, l.Outcome)
		assert.Contains(t, l.ErrorMessage, "enqueue:")
	}
}

func TestStart_RefusedEnqueueGetsFailedLogRow(t *testing.T) {
	db := store.NewMemory()
	q := &refusingQueue{refuse: map[string]bool{"p-001": true}}
	seedCampaign(t, db, models.CampaignDraft)
	seedParticipants(t, db, 3)

	result, err := newLauncher(t, db, q).Start(context.Background(), "camp-1", "organizer@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalQueued)

	// The workers still owe two outcomes, so the run stays in sending.
	c, err := db.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSending, c.Status)
	assert.Equal(t, 3, c.TotalRecipients)

	// The refused participant settles through the log like any other, so
	// aggregation can complete the run once the queued jobs finish.
	logs, err := db.ListLogsByCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "p-001", logs[0].ParticipantID)
	assert.Equal(t, models.OutcomeFailed, logs[0].Outcome)
}

func TestStart_NoParticipantsSettlesImmediately(t *testing.T) {
	db := store.NewMemory()
	q := &recordingQueue{}
	seedCampaign(t, db, models.CampaignDraft)

	result, err := newLauncher(t, db, q).Start(context.Background(), "camp-1", "organizer@example.com")
	require.NoError(t, err)
	assert.Zero(t, result.TotalQueued)
	assert.Zero(t, result.EstimatedDuration)

	c, err := db.GetCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignCompleted, c.Status)
}
