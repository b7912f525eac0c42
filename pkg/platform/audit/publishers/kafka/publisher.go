// Package kafka publishes audit events to a Kafka topic. Downstream
// consumers (SIEM, warehouse loaders) read the same Payload JSON the outbox
// relay emits.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "veriscreen/pkg/platform/audit"
)

// Publisher implements audit.Store by producing each event to Kafka,
// blocking until the broker acknowledges the write.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka brokers: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{client: client, topic: topic}, nil
}

// ensureTopic creates the topic with broker defaults, tolerating a topic
// that already exists.
func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %q: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Append publishes the event and waits for the broker acknowledgement.
// Records are keyed by evaluation ID so events about one evaluation stay
// ordered within a partition.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	payload := audit.NewPayload(event)

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	key := payload.EvaluationID
	if key == "" {
		key = payload.ID
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close releases the client. All produces are synchronous, so nothing is
// left buffered.
func (p *Publisher) Close() {
	p.client.Close()
}
