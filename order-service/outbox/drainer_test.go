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

func queuedEvent(createdAt time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        models.GenerateUUID(),
		Topic:     events.OrdersTopic.String(),
		Key:       models.GenerateUUID().String(),
		Payload:   []byte(events.OrderCreatedEvent),
		CreatedAt: createdAt,
	}
}

func TestDrainer_RunOnce(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("delivers and removes pending events in order", func(t *testing.T) {
		first := queuedEvent(base)
		second := queuedEvent(base.Add(time.Second))

		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker := mocks.NewMockPublisher(t)

		outboxRepo.EXPECT().FindPending(mock.Anything, 50).
			Return([]*domain.OutboxEvent{first, second}, nil).Once()

		var deliveredKeys []string
		broker.EXPECT().Publish(mock.Anything, mock.Anything).
			Run(func(ctx context.Context, evts ...*events.Event) {
				require.Len(t, evts, 1)
				assert.Equal(t, events.OrdersTopic, evts[0].Topic)
				assert.Equal(t, events.OrderCreatedEvent, evts[0].EventType)
				deliveredKeys = append(deliveredKeys, evts[0].Key.String())
			}).Return(nil).Twice()
		outboxRepo.EXPECT().Delete(mock.Anything, first.ID).Return(nil).Once()
		outboxRepo.EXPECT().Delete(mock.Anything, second.ID).Return(nil).Once()

		d := NewDrainer(outboxRepo, broker, DrainerConfig{})

		delivered, err := d.RunOnce(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 2, delivered)
		assert.Equal(t, []string{first.Key, second.Key}, deliveredKeys)
	})

	t.Run("stops at the first delivery failure", func(t *testing.T) {
		first := queuedEvent(base)
		second := queuedEvent(base.Add(time.Second))

		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker := mocks.NewMockPublisher(t)

		outboxRepo.EXPECT().FindPending(mock.Anything, 50).
			Return([]*domain.OutboxEvent{first, second}, nil).Once()
		broker.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
			return evt.ID == first.ID
		})).Return(errors.New("broker unavailable")).Once()

		d := NewDrainer(outboxRepo, broker, DrainerConfig{})

		delivered, err := d.RunOnce(context.Background())

		// The second event stays queued behind the failed one so creation
		// order is preserved on the next cycle.
		assert.Error(t, err)
		assert.Equal(t, 0, delivered)
	})

	t.Run("failed removal leaves the event for redelivery", func(t *testing.T) {
		first := queuedEvent(base)

		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker := mocks.NewMockPublisher(t)

		outboxRepo.EXPECT().FindPending(mock.Anything, 50).
			Return([]*domain.OutboxEvent{first}, nil).Once()
		broker.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()
		outboxRepo.EXPECT().Delete(mock.Anything, first.ID).
			Return(domain.NewStorageError("delete outbox event", errors.New("connection reset"))).Once()

		d := NewDrainer(outboxRepo, broker, DrainerConfig{})

		delivered, err := d.RunOnce(context.Background())

		assert.Error(t, err)
		assert.Equal(t, 0, delivered)
	})

	t.Run("empty outbox is a no-op", func(t *testing.T) {
		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker := mocks.NewMockPublisher(t)

		outboxRepo.EXPECT().FindPending(mock.Anything, 50).Return(nil, nil).Once()

		d := NewDrainer(outboxRepo, broker, DrainerConfig{})

		delivered, err := d.RunOnce(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, delivered)
	})
}

func TestDrainer_Start(t *testing.T) {
	t.Run("drains on the configured interval until canceled", func(t *testing.T) {
		first := queuedEvent(time.Now())

		outboxRepo := mocks.NewMockOutboxRepository(t)
		broker := mocks.NewMockPublisher(t)

		drained := make(chan struct{})
		outboxRepo.EXPECT().FindPending(mock.Anything, 50).
			RunAndReturn(func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
				select {
				case drained <- struct{}{}:
				default:
				}
				return []*domain.OutboxEvent{first}, nil
			})
		broker.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)
		outboxRepo.EXPECT().Delete(mock.Anything, first.ID).Return(nil)

		d := NewDrainer(outboxRepo, broker, DrainerConfig{Interval: 5 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			d.Start(ctx)
			close(done)
		}()

		select {
		case <-drained:
		case <-time.After(time.Second):
			t.Fatal("drainer never ran a cycle")
		}

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("drainer did not stop on cancel")
		}
	})

	t.Run("rebuilt events carry the original identity", func(t *testing.T) {
		row := queuedEvent(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

		evt := rowToEvent(row)

		require.NotNil(t, evt)
		assert.Equal(t, row.ID, evt.ID)
		assert.Equal(t, row.Key, evt.Key.String())
		assert.Equal(t, events.OrdersTopic, evt.Topic)
		assert.Equal(t, events.OrderCreatedEvent, evt.EventType)
		assert.Equal(t, row.CreatedAt, evt.Timestamp)
	})
}
