package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic carries record mutation events to dashboard consumers.
const Topic = "kpi.updates"

// KafkaBroadcaster publishes events to Kafka, keyed by sector so consumers
// see each sector's mutations in order.
type KafkaBroadcaster struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafkaBroadcaster connects to the brokers and ensures the topic exists.
func NewKafkaBroadcaster(ctx context.Context, brokers []string, logger *slog.Logger) (*KafkaBroadcaster, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	if err := ensureTopic(ctx, client); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaBroadcaster{client: client, logger: logger}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client) error {
	adm := kadm.NewClient(client)
	_, err := adm.CreateTopic(ctx, 1, 1, nil, Topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("ensure topic %s: %w", Topic, err)
	}
	return nil
}

// Broadcast publishes one event asynchronously. Delivery failures are logged,
// never surfaced to the write path.
func (b *KafkaBroadcaster) Broadcast(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(event.Sector),
		Value: value,
	}
	b.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			b.logger.Error("broadcast delivery failed",
				"topic", Topic,
				"sector", event.Sector,
				"record_id", event.RecordID,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (b *KafkaBroadcaster) Close(ctx context.Context) error {
	if err := b.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	b.client.Close()
	return nil
}
