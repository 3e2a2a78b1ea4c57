package models

import "time"

// Participant is a recipient record. Read-only input to dispatch; the
// participant store owns mutation.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Category string `json:"category"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
