package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverlabs/platform-commons/pkg/event"
)

func TestNewMessage(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		before := time.Now().UTC()
		msg := NewMessage("order.created", []byte(`{"id":1}`))

		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, "order.created", msg.Type)
		assert.Equal(t, []byte(`{"id":1}`), msg.Payload)
		assert.Equal(t, StatusPending, msg.Status)
		assert.Equal(t, PriorityNormal, msg.Priority)
		assert.Zero(t, msg.Attempts)
		assert.Nil(t, msg.ProcessAfter)
		assert.WithinRange(t, msg.CreatedAt, before, time.Now().UTC())
	})

	t.Run("two messages never share an id", func(t *testing.T) {
		a := NewMessage("t", nil)
		b := NewMessage("t", nil)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("options apply in order", func(t *testing.T) {
		after := time.Now().UTC().Add(time.Hour)
		msg := NewMessage("t", nil,
			WithPriority(PriorityCritical),
			WithMetadata(map[string]any{"tenant": "acme"}),
			WithProcessAfter(after),
		)

		assert.Equal(t, PriorityCritical, msg.Priority)
		assert.Equal(t, "acme", msg.Metadata["tenant"])
		require.NotNil(t, msg.ProcessAfter)
		assert.Equal(t, after, *msg.ProcessAfter)
	})
}

func TestNewDelayedMessage(t *testing.T) {
	delay := 30 * time.Minute
	before := time.Now().UTC()
	msg := NewDelayedMessage("t", nil, delay)

	require.NotNil(t, msg.ProcessAfter)
	assert.WithinRange(t, *msg.ProcessAfter, before.Add(delay), time.Now().UTC().Add(delay))
	assert.False(t, msg.Eligible(time.Now().UTC()))
}

func TestNewHighPriorityMessage(t *testing.T) {
	msg := NewHighPriorityMessage("t", nil)
	assert.Equal(t, PriorityHigh, msg.Priority)

	t.Run("explicit priority option wins", func(t *testing.T) {
		msg := NewHighPriorityMessage("t", nil, WithPriority(PriorityCritical))
		assert.Equal(t, PriorityCritical, msg.Priority)
	})
}

func TestFromIntegrationEvent(t *testing.T) {
	t.Run("prefixes the event type and carries the payload", func(t *testing.T) {
		ev := event.New("order.created", []byte(`{"id":1}`), nil)

		msg := FromIntegrationEvent(ev, nil)
		assert.Equal(t, "integration_event:order.created", msg.Type)
		assert.Equal(t, ev.Payload, msg.Payload)
		assert.Equal(t, StatusPending, msg.Status)
	})

	t.Run("explicit metadata wins over event metadata", func(t *testing.T) {
		ev := event.New("order.created", nil, map[string]any{
			"tenant": "acme",
			"source": "orders",
		})

		msg := FromIntegrationEvent(ev, map[string]any{"tenant": "globex"})
		assert.Equal(t, "globex", msg.Metadata["tenant"])
		assert.Equal(t, "orders", msg.Metadata["source"])
	})
}
