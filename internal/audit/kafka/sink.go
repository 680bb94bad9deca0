// Package kafka publishes audit events to a Kafka topic so compliance
// consumers can build their own materialized views. The sink is best-effort:
// the publisher logs failures and the domain mutation stands.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"medcycle/internal/audit"
)

// Sink produces one JSON record per audit event, keyed by entity ID so the
// trail for a single medicine stays ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// NewSink connects to the brokers and ensures the topic exists.
func NewSink(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("create audit topic %s: %w", res.Topic, res.Err)
		}
	}

	return &Sink{client: client, topic: topic}, nil
}

// payload mirrors audit.Event with wire-stable field names.
type payload struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	ActorID    string `json:"actor_id,omitempty"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	Notes      string `json:"notes,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		ID:         event.ID.String(),
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		ActorID:    event.ActorID.String(),
		Action:     string(event.Action),
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Notes:      event.Notes,
		RequestID:  event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.EntityID),
		Value: body,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
