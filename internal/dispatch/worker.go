package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"GatePass/internal/metrics"
	"GatePass/internal/models"
	"GatePass/internal/progress"
	"GatePass/internal/queue"
	"GatePass/internal/render"
	"GatePass/internal/store"
)

// Dispatcher holds everything a worker needs to settle one job.
type Dispatcher struct {
	Queue        queue.Queue
	Campaigns    store.CampaignStore
	Participants store.ParticipantStore
	Logs         store.EmailLogStore
	Renderer     Renderer
	Transport    Transport
	Progress     *progress.Aggregator
	Logger       *zap.Logger

	// SendTimeout bounds the render+send of a single job so a hung
	// transport cannot starve the pool.
	SendTimeout time.Duration
}

// handle settles one claimed job: deliver, then route the outcome to the
// queue (ack, retry, or drop) and the email log.
func (d *Dispatcher) handle(ctx context.Context, workerID int, job models.DispatchJob) {
	recipient, err := d.deliver(ctx, job)

	switch {
	case err == nil:
		d.record(ctx, job, recipient, models.OutcomeSent, "")
		if qErr := d.Queue.Complete(ctx, job); qErr != nil {
			d.Logger.Error("failed to complete job",
				zap.String("job_id", job.ID),
				zap.Error(qErr),
			)
		}
		metrics.EmailsSent.Inc()
		d.Logger.Info("email sent successfully",
			zap.Int("worker_id", workerID),
			zap.String("to", recipient),
			zap.String("campaign_id", job.CampaignID),
		)

	case errors.Is(err, store.ErrNotFound):
		// Data that cannot exist never will; settle without retrying.
		d.Logger.Error("job references missing data",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		d.record(ctx, job, recipient, models.OutcomeFailed, "not found")
		if qErr := d.Queue.Complete(ctx, job); qErr != nil {
			d.Logger.Error("failed to complete job",
				zap.String("job_id", job.ID),
				zap.Error(qErr),
			)
		}
		metrics.EmailsFailed.Inc()

	default:
		retried, qErr := d.Queue.Fail(ctx, job, err)
		if qErr != nil {
			d.Logger.Error("failed to fail job",
				zap.String("job_id", job.ID),
				zap.Error(qErr),
			)
		}
		if retried {
			metrics.JobRetries.Inc()
			d.Logger.Warn("email send failed, retrying",
				zap.Int("worker_id", workerID),
				zap.String("to", recipient),
				zap.Int("attempt", job.Attempt+1),
				zap.Error(err),
			)
			return
		}
		d.Logger.Error("email send failed permanently",
			zap.Int("worker_id", workerID),
			zap.String("to", recipient),
			zap.Error(err),
		)
		d.record(ctx, job, recipient, models.OutcomeFailed, err.Error())
		metrics.EmailsFailed.Inc()
	}
}

// deliver runs the send steps and returns the recipient address it resolved
// (or "unknown" when the participant never loaded).
func (d *Dispatcher) deliver(ctx context.Context, job models.DispatchJob) (string, error) {
	p, err := d.Participants.GetParticipant(ctx, job.ParticipantID)
	if err != nil {
		return "unknown", fmt.Errorf("participant %s: %w", job.ParticipantID, err)
	}

	c, err := d.Campaigns.GetCampaign(ctx, job.CampaignID)
	if err != nil {
		return p.Email, fmt.Errorf("campaign %s: %w", job.CampaignID, err)
	}

	sendCtx := ctx
	if d.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.SendTimeout)
		defer cancel()
	}

	attachment, err := d.Renderer.Render(sendCtx, p)
	if err != nil {
		return p.Email, fmt.Errorf("render attachment: %w", err)
	}

	msg := Message{
		To:             p.Email,
		Bcc:            job.OrganizerBcc,
		Subject:        c.Subject,
		Body:           render.Personalize(c.BodyTemplate, p),
		Attachment:     attachment,
		AttachmentName: fmt.Sprintf("Pass_%s.pdf", p.ID),
	}

	if err := d.Transport.Send(sendCtx, msg); err != nil {
		return p.Email, fmt.Errorf("send to %s: %w", p.Email, err)
	}
	return p.Email, nil
}

// record appends the outcome row and recomputes campaign progress from the
// log. Both calls are best-effort here; the aggregator rereads the whole log
// every time, so a missed recompute is repaired by the next one.
func (d *Dispatcher) record(ctx context.Context, job models.DispatchJob, recipient string, outcome models.LogOutcome, errMsg string) {
	entry := models.EmailLog{
		ID:             uuid.NewString(),
		CampaignID:     job.CampaignID,
		ParticipantID:  job.ParticipantID,
		RecipientEmail: recipient,
		Outcome:        outcome,
		ErrorMessage:   errMsg,
	}
	if outcome == models.OutcomeSent {
		now := time.Now()
		entry.SentAt = &now
	}

	if _, err := d.Logs.AppendLog(ctx, entry); err != nil {
		d.Logger.Error("failed to append email log",
			zap.String("job_id", job.ID),
			zap.String("campaign_id", job.CampaignID),
			zap.Error(err),
		)
		return
	}

	if _, err := d.Progress.Recompute(ctx, job.CampaignID); err != nil {
		d.Logger.Error("failed to recompute campaign progress",
			zap.String("campaign_id", job.CampaignID),
			zap.Error(err),
		)
	}
}
