package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// OrderEventHandlers consumes order events from the queue. Delivery is at
// least once, so handlers deduplicate by event ID before acting.
type OrderEventHandlers struct {
	mu        sync.Mutex
	processed map[string]struct{}
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers() *OrderEventHandlers {
	return &OrderEventHandlers{
		processed: make(map[string]struct{}),
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// Handle implements the events.Handler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.OrderCreatedEvent:
		return h.HandleOrderCreated(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandleOrderCreated processes a confirmed order announcement. A redelivered
// event is acknowledged without reprocessing.
func (h *OrderEventHandlers) HandleOrderCreated(ctx context.Context, event *events.Event) error {
	if h.seen(string(event.ID)) {
		telemetry.RecordCounter(ctx, "order_events_consumed_total", "Order events consumed", 1,
			attribute.String("outcome", "duplicate"),
		)
		return nil
	}

	log.Printf("order %s created, event %s", event.Key, event.ID)

	telemetry.RecordCounter(ctx, "order_events_consumed_total", "Order events consumed", 1,
		attribute.String("outcome", "processed"),
	)
	return nil
}

func (h *OrderEventHandlers) seen(eventID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.processed[eventID]; ok {
		return true
	}
	h.processed[eventID] = struct{}{}
	return false
}
