package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PicksLogWithoutBrokers(t *testing.T) {
	_, ok := New(nil, "user-invitations").(LogNotifier)
	assert.True(t, ok)

	k, ok := New([]string{"localhost:9092"}, "user-invitations").(*KafkaNotifier)
	require.True(t, ok)
	assert.Equal(t, "user-invitations", k.writer.Topic)
}

func TestNilKafkaNotifierFallsBackToLog(t *testing.T) {
	var n *KafkaNotifier
	assert.NoError(t, n.SendInvitation(context.Background(), Invitation{Email: "a@example.com"}))
	assert.NoError(t, n.Close())
}

func TestInvitationMessage(t *testing.T) {
	inv := Invitation{
		Email:     "a@example.com",
		Name:      "A",
		Role:      "reader",
		Link:      "http://localhost:3000/auth/setup-password?token=t",
		ExpiresAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	msg, err := invitationMessage(inv)
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", string(msg.Key))
	var decoded Invitation
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, inv, decoded)
	assert.Equal(t, "user.invited", string(msg.Headers[0].Value))
}
