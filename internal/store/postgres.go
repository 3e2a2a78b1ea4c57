package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"GatePass/internal/models"
)

// Postgres implements all three stores over a pgx pool. Statements are kept
// single so every mutation is atomic without explicit transactions; the only
// multi-row reads are the log scans.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, conn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

func (s *Postgres) Close() {
	s.Pool.Close()
}

const campaignColumns = `id, name, subject, body_template, status,
	total_recipients, sent_count, failed_count, created_at, updated_at`

func scanCampaign(row pgx.Row) (models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.BodyTemplate, &c.Status,
		&c.TotalRecipients, &c.SentCount, &c.FailedCount, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

func (s *Postgres) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) GetCampaign(ctx context.Context, id string) (models.Campaign, error) {
	return scanCampaign(s.Pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id))
}

func (s *Postgres) CreateCampaign(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	return scanCampaign(s.Pool.QueryRow(ctx,
		`INSERT INTO campaigns
		 (id, name, subject, body_template, status, total_recipients, sent_count, failed_count, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,0,0,0,NOW(),NOW())
		 RETURNING `+campaignColumns,
		c.ID, c.Name, c.Subject, c.BodyTemplate, c.Status))
}

func (s *Postgres) DeleteCampaign(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) BeginSend(ctx context.Context, id string, total int) (models.Campaign, error) {
	c, err := scanCampaign(s.Pool.QueryRow(ctx,
		`UPDATE campaigns
		 SET status=$2, total_recipients=$3, sent_count=0, failed_count=0, updated_at=NOW()
		 WHERE id=$1 AND status=$4
		 RETURNING `+campaignColumns,
		id, models.CampaignSending, total, models.CampaignDraft))
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing campaign from a non-draft one.
		if _, getErr := s.GetCampaign(ctx, id); getErr != nil {
			return models.Campaign{}, getErr
		}
		return models.Campaign{}, ErrConflict
	}
	return c, err
}

func (s *Postgres) RecordProgress(ctx context.Context, id string, sent, failed int, status models.CampaignStatus) (models.Campaign, error) {
	// sent+failed is the number of distinct settled participants, which only
	// grows as the log is appended to. Rejecting writes with a smaller sum
	// keeps counters monotonic when concurrent recomputes race on stale log
	// snapshots.
	c, err := scanCampaign(s.Pool.QueryRow(ctx,
		`UPDATE campaigns
		 SET sent_count=$2, failed_count=$3, status=$4, updated_at=NOW()
		 WHERE id=$1 AND status=$5 AND sent_count+failed_count <= $2+$3
		 RETURNING `+campaignColumns,
		id, sent, failed, status, models.CampaignSending))
	if errors.Is(err, ErrNotFound) {
		// Terminal, stale, or gone; the stored row is authoritative.
		return s.GetCampaign(ctx, id)
	}
	return c, err
}

func (s *Postgres) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, name, email, phone, category, created_at, updated_at
		 FROM participants ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) GetParticipant(ctx context.Context, id string) (models.Participant, error) {
	var p models.Participant
	err := s.Pool.QueryRow(ctx,
		`SELECT id, name, email, phone, category, created_at, updated_at
		 FROM participants WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *Postgres) CreateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO participants (id, name, email, phone, category, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Category).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Postgres) UpdateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	err := s.Pool.QueryRow(ctx,
		`UPDATE participants
		 SET name=$2, email=$3, phone=$4, category=$5, updated_at=NOW()
		 WHERE id=$1
		 RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Category).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *Postgres) DeleteParticipant(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM participants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) AppendLog(ctx context.Context, entry models.EmailLog) (models.EmailLog, error) {
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO email_logs
		 (id, campaign_id, participant_id, recipient_email, outcome, error_message, sent_at, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		 RETURNING created_at`,
		entry.ID, entry.CampaignID, entry.ParticipantID, entry.RecipientEmail,
		entry.Outcome, entry.ErrorMessage, entry.SentAt).
		Scan(&entry.CreatedAt)
	return entry, err
}

func (s *Postgres) ListLogsByCampaign(ctx context.Context, campaignID string) ([]models.EmailLog, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, campaign_id, participant_id, recipient_email, outcome, error_message, sent_at, created_at
		 FROM email_logs WHERE campaign_id=$1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.CampaignID, &l.ParticipantID, &l.RecipientEmail,
			&l.Outcome, &l.ErrorMessage, &l.SentAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
