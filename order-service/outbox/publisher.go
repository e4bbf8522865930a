package outbox

import (
	"context"
	"log"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPublishDeadline bounds the synchronous publish attempt. It is
// deliberately shorter than typical broker client defaults because the call
// sits on the order-processing path.
const DefaultPublishDeadline = 2 * time.Second

// FallbackPublisher publishes order events to the broker within a strict
// deadline and degrades to the durable outbox when the broker is unavailable.
// A broker outage therefore never fails order processing.
type FallbackPublisher struct {
	broker   events.Publisher
	outbox   domain.OutboxRepository
	deadline time.Duration
}

// NewFallbackPublisher creates a publisher with the given outbox fallback
func NewFallbackPublisher(broker events.Publisher, outbox domain.OutboxRepository, deadline time.Duration) *FallbackPublisher {
	if deadline <= 0 {
		deadline = DefaultPublishDeadline
	}
	return &FallbackPublisher{
		broker:   broker,
		outbox:   outbox,
		deadline: deadline,
	}
}

// PublishOrderCreated announces an accepted order on the orders topic, keyed
// by the order id. On broker failure or deadline expiry the event is queued
// in the outbox instead; the error is absorbed, not propagated. The returned
// error is non-nil only when the fallback write itself failed.
func (p *FallbackPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	// The payload is the bare event-type marker; consumers resolve the
	// order through its id in the key.
	payload := []byte(events.OrderCreatedEvent)
	event := events.NewEvent(events.OrdersTopic, order.ID, events.OrderCreatedEvent, payload)

	publishCtx, cancel := context.WithTimeout(ctx, p.deadline)
	err := p.broker.Publish(publishCtx, event)
	cancel()

	if err == nil {
		recordPublish(ctx, "success")
		return nil
	}

	log.Printf("broker publish failed for order %s, queueing to outbox: %v", order.ID, err)

	row := domain.NewOutboxEvent(events.OrdersTopic, order.ID, payload)
	if saveErr := p.outbox.Save(ctx, row); saveErr != nil {
		recordPublish(ctx, "lost")
		return errors.Wrap(saveErr, "failed to queue event to outbox")
	}

	recordPublish(ctx, "queued")
	return nil
}

func recordPublish(ctx context.Context, status string) {
	telemetry.RecordCounter(ctx, "order_events_published_total", "Total order event publish attempts", 1,
		attribute.String("status", status),
	)
}
