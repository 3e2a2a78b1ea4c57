// Package progress recomputes campaign counters from the append-only email
// log. Counters are never incremented in place: rebuilding them from the log
// after every outcome makes duplicate job executions and process restarts
// harmless, since recomputing twice from the same log yields the same
// result.
package progress

import (
	"context"

	"go.uber.org/zap"

	"GatePass/internal/campaign"
	"GatePass/internal/models"
	"GatePass/internal/store"
)

type Aggregator struct {
	Campaigns store.CampaignStore
	Logs      store.EmailLogStore
	Logger    *zap.Logger
}

// Tally counts distinct settled participants in a campaign's log. A
// participant with any sent row counts as sent even if failed rows exist for
// it too — a later success overrides an earlier duplicate failure.
func Tally(logs []models.EmailLog) (sent, failed int) {
	sentBy := make(map[string]struct{})
	failedBy := make(map[string]struct{})

	for _, l := range logs {
		switch l.Outcome {
		case models.OutcomeSent:
			sentBy[l.ParticipantID] = struct{}{}
		case models.OutcomeFailed:
			failedBy[l.ParticipantID] = struct{}{}
		}
	}

	for id := range failedBy {
		if _, ok := sentBy[id]; ok {
			delete(failedBy, id)
		}
	}
	return len(sentBy), len(failedBy)
}

// Recompute rebuilds the campaign's counters from its log and applies the
// terminal transition once every recipient has settled. Safe to call
// concurrently and repeatedly for the same campaign.
func (a *Aggregator) Recompute(ctx context.Context, campaignID string) (models.Campaign, error) {
	logs, err := a.Logs.ListLogsByCampaign(ctx, campaignID)
	if err != nil {
		return models.Campaign{}, err
	}
	sent, failed := Tally(logs)

	c, err := a.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return models.Campaign{}, err
	}

	status := c.Status
	if c.Status == models.CampaignSending {
		status = campaign.Settle(c.TotalRecipients, sent, failed)
	}

	updated, err := a.Campaigns.RecordProgress(ctx, campaignID, sent, failed, status)
	if err != nil {
		return models.Campaign{}, err
	}

	if status.Terminal() && c.Status == models.CampaignSending {
		a.Logger.Info("campaign settled",
			zap.String("campaign_id", campaignID),
			zap.String("status", string(updated.Status)),
			zap.Int("sent", sent),
			zap.Int("failed", failed),
		)
	}
	return updated, nil
}

// Progress is the operator-facing view of a running campaign.
type Progress struct {
	Campaign   models.Campaign `json:"campaign"`
	Sent       int             `json:"sent"`
	Failed     int             `json:"failed"`
	Total      int             `json:"total"`
	Percentage int             `json:"percentage"`
	Remaining  int             `json:"remaining"`
}

// Report recomputes and packages the campaign's progress. This is the only
// channel through which dispatch failures surface during a run.
func (a *Aggregator) Report(ctx context.Context, campaignID string) (Progress, error) {
	c, err := a.Recompute(ctx, campaignID)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{
		Campaign:  c,
		Sent:      c.SentCount,
		Failed:    c.FailedCount,
		Total:     c.TotalRecipients,
		Remaining: c.TotalRecipients - c.SentCount - c.FailedCount,
	}
	if c.TotalRecipients > 0 {
		p.Percentage = int(float64(c.SentCount+c.FailedCount)/float64(c.TotalRecipients)*100 + 0.5)
	}
	return p, nil
}
