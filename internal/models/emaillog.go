package models

import "time"

type LogOutcome string

const (
	OutcomeSent   LogOutcome = "sent"
	OutcomeFailed LogOutcome = "failed"
)

// EmailLog is one append-only row per recorded send outcome. Rows are never
// mutated or deleted; progress is always reconstructed from them, so
// duplicate rows for the same (campaign, participant) pair are tolerated.
type EmailLog struct {
	ID             string     `json:"id"`
	CampaignID     string     `json:"campaignId"`
	ParticipantID  string     `json:"participantId"`
	RecipientEmail string     `json:"recipientEmail"`
	Outcome        LogOutcome `json:"outcome"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
