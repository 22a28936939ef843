package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewPublisherWithoutBrokersIsNop(t *testing.T) {
	p := NewPublisher(nil, "topic")
	_, ok := p.(NopPublisher)
	assert.True(t, ok)
	require.NoError(t, p.PublishSessionCompleted(context.Background(), SessionCompleted{}))
}

func TestKafkaPublisherKeysByUser(t *testing.T) {
	w := &stubWriter{}
	p := &KafkaPublisher{topic: "fitlog.sessions", writer: w}
	at := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

	err := p.PublishSessionCompleted(context.Background(), SessionCompleted{
		SessionID: "s1", UserID: "u1", Reason: "inactivity", SetCount: 4, VolumeKg: 320, CompletedAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "u1", string(msg.Key))
	assert.Equal(t, EventSessionCompleted, string(msg.Headers[0].Value))

	var decoded SessionCompleted
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "inactivity", decoded.Reason)
	assert.Equal(t, 4, decoded.SetCount)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
