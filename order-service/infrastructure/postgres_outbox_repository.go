package infrastructure

import (
	"context"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresOutboxRepository implements domain.OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	db *sqlx.DB
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(db *sqlx.DB) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{db: db}
}

// postgresOutboxEvent represents an outbox row
type postgresOutboxEvent struct {
	ID        string    `db:"id"`
	Topic     string    `db:"topic"`
	Key       string    `db:"key"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// Save appends an undelivered event
func (r *PostgresOutboxRepository) Save(ctx context.Context, event *domain.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, topic, key, payload, created_at)
		VALUES (:id, :topic, :key, :payload, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, &postgresOutboxEvent{
		ID:        event.ID.String(),
		Topic:     event.Topic,
		Key:       event.Key,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return domain.NewStorageError("insert outbox event", err)
	}

	return nil
}

// FindPending returns up to limit queued events, oldest first. Redundant
// drainer instances may read the same batch; duplicate delivery attempts are
// tolerated because delivery is at least once.
func (r *PostgresOutboxRepository) FindPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT id, topic, key, payload, created_at
		FROM outbox_events
		ORDER BY created_at ASC
		LIMIT $1`

	var pgEvents []postgresOutboxEvent
	err := r.db.SelectContext(ctx, &pgEvents, query, limit)
	if err != nil {
		return nil, domain.NewStorageError("find pending outbox events", err)
	}

	events := make([]*domain.OutboxEvent, len(pgEvents))
	for i, pgEvent := range pgEvents {
		id, err := models.NewID(pgEvent.ID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid outbox event ID")
		}

		events[i] = &domain.OutboxEvent{
			ID:        id,
			Topic:     pgEvent.Topic,
			Key:       pgEvent.Key,
			Payload:   pgEvent.Payload,
			CreatedAt: pgEvent.CreatedAt,
		}
	}

	return events, nil
}

// Delete removes a delivered event
func (r *PostgresOutboxRepository) Delete(ctx context.Context, id models.ID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM outbox_events WHERE id = $1", id.String())
	if err != nil {
		return domain.NewStorageError("delete outbox event", err)
	}

	return nil
}
