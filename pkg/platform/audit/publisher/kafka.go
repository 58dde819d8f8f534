// Package publisher delivers committed audit entries to Kafka for external
// consumers (activity feeds, compliance reporting). The engine's correctness
// does not depend on delivery: entries are already durable in audit_events by
// the time they reach the outbox, and publishing only fans them out.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic is the audit fan-out topic.
const DefaultTopic = "medchain.audit"

// Kafka publishes audit outbox payloads to a Kafka topic.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures the Kafka publisher.
type Option func(*Kafka)

// WithTopic overrides the default topic.
func WithTopic(topic string) Option {
	return func(k *Kafka) {
		k.topic = topic
	}
}

// WithLogger sets a logger for delivery errors.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kafka) {
		k.logger = logger
	}
}

// NewKafka connects to the given brokers and ensures the audit topic exists.
func NewKafka(ctx context.Context, brokers []string, opts ...Option) (*Kafka, error) {
	k := &Kafka{
		topic:  DefaultTopic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, k.topic); err != nil {
		// Topic may already exist; anything else is reported on first publish.
		k.logger.DebugContext(ctx, "audit topic create", "topic", k.topic, "result", err)
	}

	k.client = client
	return k, nil
}

// Publish sends a single outbox payload keyed by event ID, synchronously.
// The outbox worker relies on the returned error to retry on the next sweep.
func (k *Kafka) Publish(ctx context.Context, eventID string, payload []byte) error {
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(eventID),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event %s: %w", eventID, err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (k *Kafka) Close() {
	k.client.Close()
}
