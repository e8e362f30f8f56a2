package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeKeepsTypeAndTime(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ev := BaseEvent{Type: "USER_ACTIVITY", Data: map[string]interface{}{"nick": "alice"}, OccurredAt: at}

	data, err := json.Marshal(Wrap(ev))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.NotEmpty(t, env.Id)

	got := env.Event()
	assert.Equal(t, "USER_ACTIVITY", got.EventType())
	assert.True(t, at.Equal(got.Timestamp()))
	assert.Equal(t, "alice", got.Payload()["nick"])
}
