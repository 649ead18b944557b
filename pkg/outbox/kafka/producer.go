package kafka

import (
	"fmt"

	confluent "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

type producer struct {
	producer     *confluent.Producer
	flushTimeout int
	log          *zap.Logger
}

// NewProducer creates a confluent producer connected to the configured
// brokers. Close flushes outstanding payloads before releasing the client.
func NewProducer(conf Config, logger *zap.Logger) (Producer, error) {
	p, err := confluent.NewProducer(&confluent.ConfigMap{
		"bootstrap.servers": conf.Brokers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &producer{
		producer:     p,
		flushTimeout: int(conf.FlushTimeout.Milliseconds()),
		log:          logger.With(zap.String("component", "kafka-producer")),
	}, nil
}

func (p *producer) Produce(message *confluent.Message, deliveryChan chan confluent.Event) error {
	if err := p.producer.Produce(message, deliveryChan); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", message.TopicPartition, err)
	}
	return nil
}

func (p *producer) Close() {
	if remaining := p.producer.Flush(p.flushTimeout); remaining > 0 {
		p.log.Warn("closing producer with unflushed messages", zap.Int("remaining", remaining))
	}
	p.producer.Close()
}
