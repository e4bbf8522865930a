package handlers

import (
	"context"
	"testing"

	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderCreatedEvent() *events.Event {
	return events.NewEvent(events.OrdersTopic, models.GenerateUUID(), events.OrderCreatedEvent, []byte(events.OrderCreatedEvent))
}

func TestOrderEventHandlers_Handle(t *testing.T) {
	t.Run("processes an order created event", func(t *testing.T) {
		h := NewOrderEventHandlers()

		err := h.Handle(context.Background(), newOrderCreatedEvent())

		assert.NoError(t, err)
	})

	t.Run("redelivered event is acknowledged without reprocessing", func(t *testing.T) {
		h := NewOrderEventHandlers()
		evt := newOrderCreatedEvent()

		require.NoError(t, h.Handle(context.Background(), evt))
		require.NoError(t, h.Handle(context.Background(), evt))
	})

	t.Run("unknown event types are ignored", func(t *testing.T) {
		h := NewOrderEventHandlers()
		evt := events.NewEvent(events.OrdersTopic, models.GenerateUUID(), "ORDER_SHIPPED", nil)

		err := h.Handle(context.Background(), evt)

		assert.NoError(t, err)
	})
}

func TestOrderEventHandlers_HandlerID(t *testing.T) {
	assert.Equal(t, "order-service-event-handler", NewOrderEventHandlers().HandlerID())
}
