package modules

import (
	"go.uber.org/fx"

	outboxkafka "github.com/quiverlabs/platform-commons/pkg/outbox/kafka"
)

// NewKafkaModule provides the Kafka publisher for outbox payloads.
func NewKafkaModule() fx.Option {
	return outboxkafka.NewKafkaPublisherModule()
}
