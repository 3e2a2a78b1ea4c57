package mail

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GatePass/internal/dispatch"
	"GatePass/internal/queue"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"5xx reply is permanent", &textproto.Error{Code: 550, Msg: "no such user"}, true},
		{"wrapped 5xx reply", fmt.Errorf("send: %w", &textproto.Error{Code: 554, Msg: "rejected"}), true},
		{"4xx reply is transient", &textproto.Error{Code: 421, Msg: "try again later"}, false},
		{"dial error is transient", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.permanent, queue.IsPermanent(got))
		})
	}
}

func TestClassify_NilPassesThrough(t *testing.T) {
	assert.NoError(t, classify(nil))
}

func TestSend_InvalidRecipientIsPermanent(t *testing.T) {
	s := &Sender{Host: "localhost", Port: 1025, From: "noreply@gatepass.events"}

	err := s.Send(context.Background(), dispatch.Message{To: "not-an-address"})
	require.Error(t, err)
	assert.True(t, queue.IsPermanent(err))
}
