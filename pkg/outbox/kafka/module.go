package kafka

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/outbox"
)

// NewKafkaPublisherModule provides a confluent producer and a PublishHandler.
// The host binds the handler to message types with RegisterTypes.
func NewKafkaPublisherModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newConfig,
			provideProducer,
			providePublishHandler,
		),
	)
}

func provideProducer(lc fx.Lifecycle, log *zap.Logger, conf Config) (Producer, error) {
	p, err := NewProducer(conf, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Close()
			return nil
		},
	})
	return p, nil
}

func providePublishHandler(producer Producer, log *zap.Logger, conf Config) *PublishHandler {
	return NewPublishHandler(producer, conf.DefaultTopic, log)
}

// RegisterTypes binds the publish handler to the given message types on the
// processor. Call it from an fx.Invoke in the host application.
func RegisterTypes(p *outbox.Processor, h *PublishHandler, types ...string) error {
	for _, t := range types {
		if err := p.RegisterHandler(t, h.Handle); err != nil {
			return err
		}
	}
	return nil
}
