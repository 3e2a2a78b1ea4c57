package campaign

import (
	"errors"

	"GatePass/internal/models"
)

var (
	// ErrCampaignNotDraft is returned when a send is requested for a
	// campaign that already left draft.
	ErrCampaignNotDraft = errors.New("campaign is not in draft status")

	// ErrInvalidTransition is returned for any other illegal status change.
	ErrInvalidTransition = errors.New("invalid campaign status transition")
)

// CanTransition reports whether moving a campaign from one status to another
// is legal. Completed and failed are terminal.
func CanTransition(from, to models.CampaignStatus) bool {
	switch from {
	case models.CampaignDraft:
		return to == models.CampaignSending
	case models.CampaignSending:
		return to == models.CampaignCompleted || to == models.CampaignFailed
	default:
		return false
	}
}

// Settle returns the status a sending campaign should hold given its frozen
// recipient total and recomputed counters. While outcomes are outstanding the
// campaign stays in sending; once every recipient has settled, a campaign
// with more failures than successes is failed, otherwise completed.
func Settle(total, sent, failed int) models.CampaignStatus {
	if sent+failed < total {
		return models.CampaignSending
	}
	if failed > sent {
		return models.CampaignFailed
	}
	return models.CampaignCompleted
}
