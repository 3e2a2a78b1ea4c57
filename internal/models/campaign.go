package models

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignSending   CampaignStatus = "sending"
	CampaignCompleted CampaignStatus = "completed"
	CampaignFailed    CampaignStatus = "failed"
)

// Terminal reports whether no further status transitions are legal.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignFailed
}

// Campaign is one template plus a recipient-wide send with a tracked
// lifecycle. TotalRecipients is frozen when the send starts; SentCount and
// FailedCount are recomputed from the email log, never incremented in place.
type Campaign struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Subject      string         `json:"subject"`
	BodyTemplate string         `json:"bodyTemplate"`
	Status       CampaignStatus `json:"status"`

	TotalRecipients int `json:"totalRecipients"`
	SentCount       int `json:"sentCount"`
	FailedCount     int `json:"failedCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
