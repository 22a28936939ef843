// Package events publishes session lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const EventSessionCompleted = "session.completed"

// SessionCompleted is emitted once per session when it is marked complete.
type SessionCompleted struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	TelegramID  int64     `json:"telegram_id,omitempty"`
	Reason      string    `json:"reason"`
	SetCount    int       `json:"set_count"`
	VolumeKg    float64   `json:"volume_kg"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher delivers lifecycle events.
type Publisher interface {
	PublishSessionCompleted(ctx context.Context, evt SessionCompleted) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by user so a user's events stay ordered.
type KafkaPublisher struct {
	brokers []string
	topic   string

	mu     sync.Mutex
	writer messageWriter
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return &KafkaPublisher{brokers: brokers, topic: topic}
}

func (p *KafkaPublisher) PublishSessionCompleted(ctx context.Context, evt SessionCompleted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", EventSessionCompleted, err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.UserID),
		Value: payload,
		Time:  evt.CompletedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventSessionCompleted)},
		},
	}
	return p.writerForTopic().WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) writerForTopic() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		return p.writer
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        p.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return p.writer
}

// Close releases the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishSessionCompleted(context.Context, SessionCompleted) error { return nil }
func (NopPublisher) Close() error                                                  { return nil }
