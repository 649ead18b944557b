package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quiverlabs/platform-commons/pkg/outbox"
)

type mockProducer struct {
	produceErr  error
	deliveryErr error

	produced []*kafka.Message
}

func (m *mockProducer) Produce(message *kafka.Message, deliveryChan chan kafka.Event) error {
	if m.produceErr != nil {
		return m.produceErr
	}
	m.produced = append(m.produced, message)

	report := *message
	report.TopicPartition.Error = m.deliveryErr
	deliveryChan <- &report
	return nil
}

func (m *mockProducer) Close() {}

func TestPublishHandler_Handle(t *testing.T) {
	t.Run("publishes the payload to the default topic", func(t *testing.T) {
		producer := &mockProducer{}
		h := NewPublishHandler(producer, "integration-events", zap.NewNop())

		msg := outbox.NewMessage("order.created", []byte(`{"id":1}`))
		require.NoError(t, h.Handle(context.Background(), msg))

		require.Len(t, producer.produced, 1)
		sent := producer.produced[0]
		assert.Equal(t, "integration-events", *sent.TopicPartition.Topic)
		assert.Equal(t, []byte("order.created"), sent.Key)
		assert.Equal(t, []byte(`{"id":1}`), sent.Value)
	})

	t.Run("topic metadata overrides the default", func(t *testing.T) {
		producer := &mockProducer{}
		h := NewPublishHandler(producer, "integration-events", zap.NewNop())

		msg := outbox.NewMessage("order.created", nil,
			outbox.WithMetadata(map[string]any{MetadataTopicKey: "orders"}))
		require.NoError(t, h.Handle(context.Background(), msg))

		require.Len(t, producer.produced, 1)
		assert.Equal(t, "orders", *producer.produced[0].TopicPartition.Topic)
	})

	t.Run("no topic anywhere is an error", func(t *testing.T) {
		producer := &mockProducer{}
		h := NewPublishHandler(producer, "", zap.NewNop())

		err := h.Handle(context.Background(), outbox.NewMessage("order.created", nil))
		assert.Error(t, err)
		assert.Empty(t, producer.produced)
	})

	t.Run("produce failure is returned", func(t *testing.T) {
		producer := &mockProducer{produceErr: errors.New("queue full")}
		h := NewPublishHandler(producer, "integration-events", zap.NewNop())

		err := h.Handle(context.Background(), outbox.NewMessage("order.created", nil))
		assert.ErrorContains(t, err, "queue full")
	})

	t.Run("broker delivery failure is returned", func(t *testing.T) {
		producer := &mockProducer{deliveryErr: errors.New("leader not available")}
		h := NewPublishHandler(producer, "integration-events", zap.NewNop())

		err := h.Handle(context.Background(), outbox.NewMessage("order.created", nil))
		assert.ErrorContains(t, err, "leader not available")
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// producer that never reports delivery
		h := NewPublishHandler(silentProducer{}, "integration-events", zap.NewNop())
		err := h.Handle(ctx, outbox.NewMessage("order.created", nil))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type silentProducer struct{}

func (silentProducer) Produce(message *kafka.Message, deliveryChan chan kafka.Event) error {
	return nil
}

func (silentProducer) Close() {}
