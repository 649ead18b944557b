// Package kafka provides an outbox handler that publishes message payloads
// to Kafka.
package kafka

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/outbox"
)

// MetadataTopicKey is the message metadata key that overrides the default topic.
const MetadataTopicKey = "topic"

// Producer is the Kafka producer surface the handler needs.
type Producer interface {
	Produce(message *kafka.Message, deliveryChan chan kafka.Event) error
	Close()
}

// PublishHandler delivers outbox message payloads to Kafka and waits for
// the broker's delivery report, so the outbox only marks a message
// PROCESSED once the broker has acknowledged it.
type PublishHandler struct {
	producer     Producer
	defaultTopic string
	log          *zap.Logger
}

func NewPublishHandler(producer Producer, defaultTopic string, logger *zap.Logger) *PublishHandler {
	return &PublishHandler{
		producer:     producer,
		defaultTopic: defaultTopic,
		log:          logger.With(zap.String("component", "outbox-kafka")),
	}
}

// Handle is an outbox.Handler.
func (h *PublishHandler) Handle(ctx context.Context, msg *outbox.Message) error {
	topic := h.topicFor(msg)
	if topic == "" {
		return fmt.Errorf("no topic for message %s: set a default or %q metadata", msg.ID, MetadataTopicKey)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err := h.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.Type),
		Value:          msg.Payload,
		Opaque:         msg.ID,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message %s to topic %s: %w", msg.ID, topic, err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for delivery report of message %s: %w", msg.ID, ctx.Err())
	case ev := <-deliveryChan:
		report, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T for message %s", ev, msg.ID)
		}
		if report.TopicPartition.Error != nil {
			return fmt.Errorf("kafka delivery of message %s failed: %w", msg.ID, report.TopicPartition.Error)
		}
	}

	h.log.Debug("payload published",
		zap.String("id", msg.ID),
		zap.String("topic", topic))
	return nil
}

func (h *PublishHandler) topicFor(msg *outbox.Message) string {
	if raw, ok := msg.Metadata[MetadataTopicKey]; ok {
		if topic, ok := raw.(string); ok && topic != "" {
			return topic
		}
	}
	return h.defaultTopic
}
