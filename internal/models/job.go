package models

import "time"

// DispatchJob is one scheduled (campaign, participant) send task. The queue
// owns it for its lifetime; Attempt is bumped by the queue on failure.
type DispatchJob struct {
	ID            string `json:"id"`
	CampaignID    string `json:"campaignId"`
	ParticipantID string `json:"participantId"`
	OrganizerBcc  string `json:"organizerBcc"`

	Attempt     int       `json:"attempt"`
	MaxAttempts int       `json:"maxAttempts"`
	EligibleAt  time.Time `json:"eligibleAt"`
}
