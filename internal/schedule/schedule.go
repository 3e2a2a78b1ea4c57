// Package schedule computes the batch/stagger send plan for a campaign. The
// planner is pure: given the same recipient ordering and policy it always
// produces the same delays, which is what rate-limits the mail transport
// without the transport having to do it.
package schedule

import (
	"time"

	"GatePass/internal/models"
)

// Policy controls how a recipient list is spread over time. Batch k
// (0-indexed) starts at k×BatchInterval; recipient i within a batch is
// staggered a further i×Stagger.
type Policy struct {
	BatchSize     int
	BatchInterval time.Duration
	Stagger       time.Duration
}

// DefaultPolicy matches the provider limits the service was tuned for:
// batches of 50, 30 seconds apart, one second between recipients.
func DefaultPolicy() Policy {
	return Policy{
		BatchSize:     50,
		BatchInterval: 30 * time.Second,
		Stagger:       time.Second,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.BatchSize <= 0 {
		p.BatchSize = d.BatchSize
	}
	if p.BatchInterval <= 0 {
		p.BatchInterval = d.BatchInterval
	}
	if p.Stagger <= 0 {
		p.Stagger = d.Stagger
	}
	return p
}

// Slot is one planned send: a participant and its delay relative to the
// moment the campaign send was triggered.
type Slot struct {
	Participant models.Participant
	Delay       time.Duration
}

// Plan partitions participants into consecutive batches and assigns each one
// its eligible-time offset. Delays are strictly increasing in list order.
func Plan(participants []models.Participant, p Policy) []Slot {
	p = p.normalized()

	slots := make([]Slot, 0, len(participants))
	for i, part := range participants {
		batch := i / p.BatchSize
		offset := i % p.BatchSize

		slots = append(slots, Slot{
			Participant: part,
			Delay:       time.Duration(batch)*p.BatchInterval + time.Duration(offset)*p.Stagger,
		})
	}
	return slots
}

// EstimatedDuration reports how long the full plan takes to hand every send
// to the transport: one batch interval per batch, rounded up.
func EstimatedDuration(n int, p Policy) time.Duration {
	if n <= 0 {
		return 0
	}
	p = p.normalized()
	batches := (n + p.BatchSize - 1) / p.BatchSize
	return time.Duration(batches) * p.BatchInterval
}
