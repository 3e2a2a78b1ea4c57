// Package store owns durable state: campaigns, participants and the
// append-only email log. Two implementations ship — pgx-backed Postgres for
// production and a mutex-guarded in-memory store for tests and local runs —
// behind the same interfaces.
package store

import (
	"context"
	"errors"

	"GatePass/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict means a guarded update found the record in a different
	// status than required, e.g. starting a send on a non-draft campaign.
	ErrConflict = errors.New("conflicting status")
)

type CampaignStore interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id string) (models.Campaign, error)
	CreateCampaign(ctx context.Context, c models.Campaign) (models.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error

	// BeginSend atomically moves a draft campaign to sending, freezing the
	// recipient total and zeroing both counters. ErrConflict when the
	// campaign is not in draft.
	BeginSend(ctx context.Context, id string, total int) (models.Campaign, error)

	// RecordProgress overwrites the counters (and status) of a campaign
	// still in sending, in one atomic update. Writes whose sent+failed sum
	// is below the stored sum are dropped — they come from a stale log
	// snapshot — so counters never move backwards. Once a campaign is
	// terminal the call is a no-op returning the stored row, so duplicate
	// aggregations after completion are harmless.
	RecordProgress(ctx context.Context, id string, sent, failed int, status models.CampaignStatus) (models.Campaign, error)
}

type ParticipantStore interface {
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id string) (models.Participant, error)
	CreateParticipant(ctx context.Context, p models.Participant) (models.Participant, error)
	UpdateParticipant(ctx context.Context, p models.Participant) (models.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

type EmailLogStore interface {
	// AppendLog inserts one outcome row. Rows are never updated or removed.
	AppendLog(ctx context.Context, entry models.EmailLog) (models.EmailLog, error)
	ListLogsByCampaign(ctx context.Context, campaignID string) ([]models.EmailLog, error)
}
