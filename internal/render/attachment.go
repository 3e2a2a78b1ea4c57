package render

import (
	"context"
	"encoding/json"
	"fmt"

	"GatePass/internal/models"
)

// PassPayload is the data a pass renderer embeds in the QR code.
type PassPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Category string `json:"category"`
}

// PayloadRenderer is the stand-in attachment renderer used in wiring and
// tests: it emits the raw QR payload bytes instead of a full PDF pass. A
// production deployment swaps in the real pass generator behind the same
// dispatch.Renderer contract.
type PayloadRenderer struct{}

func (PayloadRenderer) Render(ctx context.Context, p models.Participant) ([]byte, error) {
	b, err := json.Marshal(PassPayload{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Category: p.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("encode pass payload: %w", err)
	}
	return b, nil
}
