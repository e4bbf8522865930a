package events

import (
	"testing"

	"github.com/jl681/order-processing/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	key := models.GenerateUUID()

	evt := NewEvent(OrdersTopic, key, OrderCreatedEvent, []byte(OrderCreatedEvent))

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, key, evt.Key)
	assert.Equal(t, OrdersTopic, evt.Topic)
	assert.Equal(t, OrderCreatedEvent, evt.EventType)
	assert.False(t, evt.Timestamp.IsZero())
}

func TestEvent_MarshalPayload(t *testing.T) {
	t.Run("byte payloads pass through unmodified", func(t *testing.T) {
		evt := NewEvent(OrdersTopic, models.GenerateUUID(), OrderCreatedEvent, []byte(`{"raw":true}`))

		payload, err := evt.MarshalPayload()

		require.NoError(t, err)
		assert.JSONEq(t, `{"raw":true}`, string(payload))
	})

	t.Run("structured payloads are marshaled", func(t *testing.T) {
		evt := NewEvent(OrdersTopic, models.GenerateUUID(), OrderCreatedEvent, map[string]string{"order_id": "abc"})

		payload, err := evt.MarshalPayload()

		require.NoError(t, err)
		assert.JSONEq(t, `{"order_id":"abc"}`, string(payload))
	})
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	evt := NewEvent(OrdersTopic, models.GenerateUUID(), OrderCreatedEvent, map[string]interface{}{"order_id": "abc"}).
		WithMetadata("source", "order-service")

	data, err := evt.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, evt.Key, decoded.Key)
	assert.Equal(t, evt.EventType, decoded.EventType)
	source, ok := decoded.Metadata.Get("source")
	assert.True(t, ok)
	assert.Equal(t, "order-service", source)
}

func TestNewTopic(t *testing.T) {
	topic, err := NewTopic("orders-topic")
	require.NoError(t, err)
	assert.Equal(t, "orders-topic", topic.String())

	_, err = NewTopic("")
	assert.ErrorIs(t, err, ErrInvalidTopic)
}
