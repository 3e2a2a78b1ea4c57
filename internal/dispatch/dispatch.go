// Package dispatch executes one queued send per job: resolve the campaign
// and participant, render the pass attachment, compose the personalized
// message, hand it to the transport, and append the outcome to the email
// log. Everything outside that sequence (delays, retries, exclusivity) is
// the queue's business.
package dispatch

import (
	"context"

	"GatePass/internal/models"
)

// Message is one fully composed outbound email.
type Message struct {
	To             string
	Bcc            string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Renderer produces the attachment bytes for a participant. Failures are
// treated as transient and retried by the queue.
type Renderer interface {
	Render(ctx context.Context, p models.Participant) ([]byte, error)
}

// Transport delivers one composed message. Implementations distinguish
// transient failures from permanent ones (see queue.IsPermanent).
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
