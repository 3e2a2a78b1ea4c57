package store

import (
	"context"
	"sync"
	"time"

	"GatePass/internal/models"
)

// Memory keeps everything in maps behind one mutex. Participants preserve
// insertion order so the scheduler sees a stable list ordering.
type Memory struct {
	mu sync.Mutex

	campaigns map[string]models.Campaign

	participants     map[string]models.Participant
	participantOrder []string

	logs []models.EmailLog
}

func NewMemory() *Memory {
	return &Memory{
		campaigns:    make(map[string]models.Campaign),
		participants: make(map[string]models.Participant),
	}
}

func (s *Memory) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	return out, nil
}

func (s *Memory) GetCampaign(ctx context.Context, id string) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return models.Campaign{}, ErrNotFound
	}
	return c, nil
}

func (s *Memory) CreateCampaign(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.campaigns[c.ID] = c
	return c, nil
}

func (s *Memory) DeleteCampaign(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[id]; !ok {
		return ErrNotFound
	}
	delete(s.campaigns, id)
	return nil
}

func (s *Memory) BeginSend(ctx context.Context, id string, total int) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return models.Campaign{}, ErrNotFound
	}
	if c.Status != models.CampaignDraft {
		return models.Campaign{}, ErrConflict
	}

	c.Status = models.CampaignSending
	c.TotalRecipients = total
	c.SentCount = 0
	c.FailedCount = 0
	c.UpdatedAt = time.Now()
	s.campaigns[id] = c
	return c, nil
}

func (s *Memory) RecordProgress(ctx context.Context, id string, sent, failed int, status models.CampaignStatus) (models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return models.Campaign{}, ErrNotFound
	}
	if c.Status != models.CampaignSending {
		return c, nil
	}
	// A smaller settled sum means the caller tallied a stale log snapshot;
	// keep the fresher counters.
	if sent+failed < c.SentCount+c.FailedCount {
		return c, nil
	}

	c.SentCount = sent
	c.FailedCount = failed
	c.Status = status
	c.UpdatedAt = time.Now()
	s.campaigns[id] = c
	return c, nil
}

func (s *Memory) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Participant, 0, len(s.participantOrder))
	for _, id := range s.participantOrder {
		out = append(out, s.participants[id])
	}
	return out, nil
}

func (s *Memory) GetParticipant(ctx context.Context, id string) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[id]
	if !ok {
		return models.Participant{}, ErrNotFound
	}
	return p, nil
}

func (s *Memory) CreateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, ok := s.participants[p.ID]; !ok {
		s.participantOrder = append(s.participantOrder, p.ID)
	}
	s.participants[p.ID] = p
	return p, nil
}

func (s *Memory) UpdateParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.participants[p.ID]
	if !ok {
		return models.Participant{}, ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now()
	s.participants[p.ID] = p
	return p, nil
}

func (s *Memory) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[id]; !ok {
		return ErrNotFound
	}
	delete(s.participants, id)
	for i, pid := range s.participantOrder {
		if pid == id {
			s.participantOrder = append(s.participantOrder[:i], s.participantOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Memory) AppendLog(ctx context.Context, entry models.EmailLog) (models.EmailLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.CreatedAt = time.Now()
	s.logs = append(s.logs, entry)
	return entry, nil
}

func (s *Memory) ListLogsByCampaign(ctx context.Context, campaignID string) ([]models.EmailLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.EmailLog
	for _, l := range s.logs {
		if l.CampaignID == campaignID {
			out = append(out, l)
		}
	}
	return out, nil
}
