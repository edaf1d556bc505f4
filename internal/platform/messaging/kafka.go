package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"autoboard/internal/shared/events"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes event envelopes to the configured brokers. The topic is
// chosen per message so one writer serves every topic.
type Kafka struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	addrs := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(addrs...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.EntityID),
		Value: payload,
		Time:  event.OccurredAtUTC,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		k.logger.Error("event publish failed",
			"event", "kafka_publish_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
