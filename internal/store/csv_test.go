package store_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GatePass/internal/store"
)

func TestParseParticipantsCSV(t *testing.T) {
	in := strings.NewReader(
		"Name,Email,Phone,Category\n" +
			"Asha,asha@example.com,123,Speaker\n" +
			"Ravi,ravi@example.com,,\n" +
			",missing-name@example.com,,\n")

	parts, err := store.ParseParticipantsCSV(in, 0)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	assert.Equal(t, "Asha", parts[0].Name)
	assert.Equal(t, "asha@example.com", parts[0].Email)
	assert.Equal(t, "Speaker", parts[0].Category)
	assert.NotEmpty(t, parts[0].ID)

	assert.Equal(t, "General", parts[1].Category, "empty category defaults")
	assert.Empty(t, parts[1].Phone)
}

func TestParseParticipantsCSV_HeaderCaseInsensitive(t *testing.T) {
	in := strings.NewReader("EMAIL,name\na@example.com,Asha\n")
	parts, err := store.ParseParticipantsCSV(in, 0)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "a@example.com", parts[0].Email)
}

func TestParseParticipantsCSV_SkipsRowsWithoutEmail(t *testing.T) {
	in := strings.NewReader("Name,Email\nAsha,\nRavi,ravi@example.com\n")
	parts, err := store.ParseParticipantsCSV(in, 0)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Ravi", parts[0].Name)
}

func TestParseParticipantsCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing email column", "Name,Phone\nAsha,123\n"},
		{"missing name column", "Email\na@example.com\n"},
		{"no data rows", "Name,Email\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ParseParticipantsCSV(strings.NewReader(tt.in), 0)
			assert.Error(t, err)
		})
	}
}

func TestParseParticipantsCSV_MaxRows(t *testing.T) {
	in := strings.NewReader("Name,Email\nA,a@x.com\nB,b@x.com\nC,c@x.com\n")
	parts, err := store.ParseParticipantsCSV(in, 2)
	require.NoError(t, err)
	assert.Len(t, parts, 2)
}
