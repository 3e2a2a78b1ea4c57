package store

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"GatePass/internal/models"
)

// ParseParticipantsCSV reads participants from a CSV with a header row. Name
// and Email columns (case-insensitive) are required; Phone and Category are
// optional, with Category defaulting to "General". Malformed rows and rows
// missing an email are skipped. maxRows bounds the import size.
func ParseParticipantsCSV(r io.Reader, maxRows int) ([]models.Participant, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}

	nameIdx, emailIdx, phoneIdx, categoryIdx := -1, -1, -1, -1
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			nameIdx = i
		case "email":
			emailIdx = i
		case "phone":
			phoneIdx = i
		case "category":
			categoryIdx = i
		}
	}
	if nameIdx == -1 || emailIdx == -1 {
		return nil, errors.New("csv must contain Name and Email columns")
	}

	if maxRows <= 0 {
		maxRows = 1000
	}

	out := make([]models.Participant, 0)
	for len(out) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(headers) {
			// skip malformed row
			continue
		}

		email := strings.TrimSpace(record[emailIdx])
		if email == "" {
			continue
		}

		p := models.Participant{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(record[nameIdx]),
			Email:    email,
			Category: "General",
		}
		if phoneIdx != -1 {
			p.Phone = strings.TrimSpace(record[phoneIdx])
		}
		if categoryIdx != -1 {
			if c := strings.TrimSpace(record[categoryIdx]); c != "" {
				p.Category = c
			}
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, errors.New("csv must contain at least one data row")
	}
	return out, nil
}
