// Package render personalizes campaign bodies and exposes the attachment
// contract. Pass generation (PDF with an embedded QR payload) is an external
// capability; this package only defines what dispatch needs from it.
package render

import (
	"strings"

	"GatePass/internal/models"
)

// Personalize substitutes {{name}}, {{id}}, {{email}} and {{category}} in
// the body template with the participant's values. Unknown placeholders are
// left untouched.
func Personalize(template string, p models.Participant) string {
	r := strings.NewReplacer(
		"{{name}}", p.Name,
		"{{id}}", p.ID,
		"{{email}}", p.Email,
		"{{category}}", p.Category,
	)
	return r.Replace(template)
}
