package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/order-service/mocks"
	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func outboxTestOrder(t *testing.T) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(models.GenerateUUID(), 42, 2, models.NewMoney(1999, "USD"), "123 Main St")
	require.NoError(t, err)
	return order
}

func TestFallbackPublisher_PublishOrderCreated(t *testing.T) {
	t.Run("publishes to the broker keyed by order id", func(t *testing.T) {
		order := outboxTestOrder(t)

		broker := mocks.NewMockPublisher(t)
		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
			return evt.EventType == events.OrderCreatedEvent &&
				evt.Topic == events.OrdersTopic &&
				evt.Key == order.ID
		})).Return(nil).Once()

		p := NewFallbackPublisher(broker, outboxRepo, DefaultPublishDeadline)

		err := p.PublishOrderCreated(context.Background(), order)

		assert.NoError(t, err)
	})

	t.Run("broker failure degrades to the outbox", func(t *testing.T) {
		order := outboxTestOrder(t)

		broker := mocks.NewMockPublisher(t)
		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker.EXPECT().Publish(mock.Anything, mock.Anything).
			Return(errors.New("broker unavailable")).Once()
		outboxRepo.EXPECT().Save(mock.Anything, mock.MatchedBy(func(row *domain.OutboxEvent) bool {
			return row.Topic == events.OrdersTopic.String() &&
				row.Key == order.ID.String() &&
				string(row.Payload) == events.OrderCreatedEvent
		})).Return(nil).Once()

		p := NewFallbackPublisher(broker, outboxRepo, DefaultPublishDeadline)

		err := p.PublishOrderCreated(context.Background(), order)

		// The failure is absorbed; order processing is unaffected.
		assert.NoError(t, err)
	})

	t.Run("failed fallback write surfaces as an error", func(t *testing.T) {
		order := outboxTestOrder(t)

		broker := mocks.NewMockPublisher(t)
		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker.EXPECT().Publish(mock.Anything, mock.Anything).
			Return(errors.New("broker unavailable")).Once()
		outboxRepo.EXPECT().Save(mock.Anything, mock.Anything).
			Return(domain.NewStorageError("insert outbox event", errors.New("disk full"))).Once()

		p := NewFallbackPublisher(broker, outboxRepo, DefaultPublishDeadline)

		err := p.PublishOrderCreated(context.Background(), order)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to queue event to outbox")
	})

	t.Run("slow broker hits the deadline and falls back", func(t *testing.T) {
		order := outboxTestOrder(t)

		broker := mocks.NewMockPublisher(t)
		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker.EXPECT().Publish(mock.Anything, mock.Anything).
			RunAndReturn(func(ctx context.Context, evts ...*events.Event) error {
				// Simulate a broker that outlives the publish deadline.
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			}).Once()
		outboxRepo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()

		p := NewFallbackPublisher(broker, outboxRepo, 10*time.Millisecond)

		err := p.PublishOrderCreated(context.Background(), order)

		assert.NoError(t, err)
	})
}
