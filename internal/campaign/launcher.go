package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"GatePass/internal/metrics"
	"GatePass/internal/models"
	"GatePass/internal/queue"
	"GatePass/internal/schedule"
	"GatePass/internal/store"
)

// Launcher turns a send request into queued dispatch jobs. The participant
// list is snapshotted once: the frozen totalRecipients and the jobs cover
// exactly that snapshot, so participants added mid-send are excluded from
// the run.
type Launcher struct {
	Campaigns    store.CampaignStore
	Participants store.ParticipantStore
	Logs         store.EmailLogStore
	Queue        queue.Queue
	Policy       schedule.Policy
	Logger       *zap.Logger
}

// StartResult is returned to the operator immediately; everything after this
// point surfaces only through progress polling.
type StartResult struct {
	Campaign          models.Campaign `json:"campaign"`
	TotalQueued       int             `json:"totalQueued"`
	EstimatedDuration time.Duration   `json:"-"`
}

// Start moves a draft campaign into sending and enqueues one job per
// participant according to the batch plan. ErrCampaignNotDraft when the
// campaign already left draft; in that case no counters are touched.
func (l *Launcher) Start(ctx context.Context, campaignID, organizerEmail string) (StartResult, error) {
	participants, err := l.Participants.ListParticipants(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("list participants: %w", err)
	}

	c, err := l.Campaigns.BeginSend(ctx, campaignID, len(participants))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return StartResult{}, ErrCampaignNotDraft
		}
		return StartResult{}, err
	}

	queued, unqueued := 0, 0
	for _, slot := range schedule.Plan(participants, l.Policy) {
		job := models.DispatchJob{
			ID:            uuid.NewString(),
			CampaignID:    campaignID,
			ParticipantID: slot.Participant.ID,
			OrganizerBcc:  organizerEmail,
		}
		if err := l.Queue.Enqueue(ctx, job, slot.Delay); err != nil {
			l.Logger.Error("failed to enqueue dispatch job",
				zap.String("campaign_id", campaignID),
				zap.String("participant_id", slot.Participant.ID),
				zap.Error(err),
			)
			// No job will ever settle this participant, so write the
			// terminal outcome here or the campaign can never leave
			// sending.
			l.recordUnqueued(ctx, campaignID, slot.Participant, err)
			unqueued++
			continue
		}
		metrics.JobsEnqueued.Inc()
		queued++
	}

	if queued == 0 {
		// No worker will ever recompute this campaign: settle it now.
		// Completed when there was nothing to send, failed when every
		// enqueue was refused.
		if _, err := l.Campaigns.RecordProgress(ctx, campaignID, 0, unqueued, Settle(len(participants), 0, unqueued)); err != nil {
			l.Logger.Error("failed to settle unstarted campaign",
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
		}
	}

	l.Logger.Info("campaign send started",
		zap.String("campaign_id", campaignID),
		zap.Int("total_queued", queued),
	)

	return StartResult{
		Campaign:          c,
		TotalQueued:       queued,
		EstimatedDuration: schedule.EstimatedDuration(len(participants), l.Policy),
	}, nil
}

// recordUnqueued writes a failed log row for a participant whose job never
// reached the queue, keeping the log complete so aggregation can settle the
// run.
func (l *Launcher) recordUnqueued(ctx context.Context, campaignID string, p models.Participant, cause error) {
	_, err := l.Logs.AppendLog(ctx, models.EmailLog{
		ID:             uuid.NewString(),
		CampaignID:     campaignID,
		ParticipantID:  p.ID,
		RecipientEmail: p.Email,
		Outcome:        models.OutcomeFailed,
		ErrorMessage:   fmt.Sprintf("enqueue: %v", cause),
	})
	if err != nil {
		l.Logger.Error("failed to log unqueued participant",
			zap.String("campaign_id", campaignID),
			zap.String("participant_id", p.ID),
			zap.Error(err),
		)
	}
}
