package domain

import (
	"context"
	"time"

	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/models"
)

// OutboxEvent is a durably queued event that could not be delivered to the
// broker synchronously. Rows are append-only and drained oldest-first.
type OutboxEvent struct {
	ID        models.ID `json:"id"`
	Topic     string    `json:"topic"`
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOutboxEvent queues an undelivered event for the drainer
func NewOutboxEvent(topic events.Topic, key models.ID, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		ID:        models.GenerateUUID(),
		Topic:     topic.String(),
		Key:       key.String(),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// OutboxRepository is the durable queue of undelivered events
type OutboxRepository interface {
	// Save appends an undelivered event.
	Save(ctx context.Context, event *OutboxEvent) error

	// FindPending returns up to limit queued events ordered by creation
	// time ascending.
	FindPending(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// Delete removes a delivered event.
	Delete(ctx context.Context, id models.ID) error
}
