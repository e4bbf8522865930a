package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedOrder(t *testing.T, repo *MemoryOrderRepository) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(models.GenerateUUID(), 42, 2, models.NewMoney(1999, "USD"), "123 Main St")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestMemoryOrderRepository_Create(t *testing.T) {
	repo := NewMemoryOrderRepository()
	order := storedOrder(t, repo)

	t.Run("created order is readable", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), order.ID)

		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, order.ID, found.ID)
		assert.Equal(t, domain.OrderStatusPending, found.Status)
		assert.Equal(t, 0, found.Version.Value)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := repo.Create(context.Background(), order)
		assert.Error(t, err)
	})
}

func TestMemoryOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("matching version updates and increments", func(t *testing.T) {
		repo := NewMemoryOrderRepository()
		order := storedOrder(t, repo)

		err := repo.UpdateStatus(ctx, order.ID, 0, domain.OrderStatusConfirmed)

		require.NoError(t, err)
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, found.Status)
		assert.Equal(t, 1, found.Version.Value)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		repo := NewMemoryOrderRepository()
		order := storedOrder(t, repo)
		require.NoError(t, repo.UpdateStatus(ctx, order.ID, 0, domain.OrderStatusConfirmed))

		err := repo.UpdateStatus(ctx, order.ID, 0, domain.OrderStatusFailed)

		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		// The losing write left no trace.
		found, findErr := repo.FindByID(ctx, order.ID)
		require.NoError(t, findErr)
		assert.Equal(t, domain.OrderStatusConfirmed, found.Status)
		assert.Equal(t, 1, found.Version.Value)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := NewMemoryOrderRepository()

		err := repo.UpdateStatus(ctx, models.GenerateUUID(), 0, domain.OrderStatusConfirmed)

		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("two racing writers produce exactly one winner", func(t *testing.T) {
		repo := NewMemoryOrderRepository()
		order := storedOrder(t, repo)

		var wg sync.WaitGroup
		results := make([]error, 2)
		statuses := []domain.OrderStatus{domain.OrderStatusConfirmed, domain.OrderStatusFailed}

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = repo.UpdateStatus(ctx, order.ID, 0, statuses[i])
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, domain.ErrVersionConflict)
			}
		}
		assert.Equal(t, 1, winners)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, found.Status.IsTerminal())
		assert.Equal(t, 1, found.Version.Value)
	})
}

func TestMemoryOrderRepository_FindByID_Unknown(t *testing.T) {
	repo := NewMemoryOrderRepository()

	found, err := repo.FindByID(context.Background(), models.GenerateUUID())

	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryOrderRepository_FindByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	first := storedOrder(t, repo)
	second := storedOrder(t, repo)
	confirmed := storedOrder(t, repo)
	require.NoError(t, repo.UpdateStatus(ctx, confirmed.ID, 0, domain.OrderStatusConfirmed))

	pending, err := repo.FindByStatus(ctx, domain.OrderStatusPending)

	require.NoError(t, err)
	require.Len(t, pending, 2)
	ids := []models.ID{pending[0].ID, pending[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestMemoryOutboxRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	queued := func(createdAt time.Time) *domain.OutboxEvent {
		return &domain.OutboxEvent{
			ID:        models.GenerateUUID(),
			Topic:     events.OrdersTopic.String(),
			Key:       models.GenerateUUID().String(),
			Payload:   []byte(events.OrderCreatedEvent),
			CreatedAt: createdAt,
		}
	}

	t.Run("find pending returns oldest first", func(t *testing.T) {
		repo := NewMemoryOutboxRepository()

		newer := queued(base.Add(time.Minute))
		older := queued(base)
		require.NoError(t, repo.Save(ctx, newer))
		require.NoError(t, repo.Save(ctx, older))

		rows, err := repo.FindPending(ctx, 10)

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, older.ID, rows[0].ID)
		assert.Equal(t, newer.ID, rows[1].ID)
	})

	t.Run("limit caps the batch", func(t *testing.T) {
		repo := NewMemoryOutboxRepository()
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Save(ctx, queued(base.Add(time.Duration(i)*time.Second))))
		}

		rows, err := repo.FindPending(ctx, 3)

		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("delete removes a delivered event", func(t *testing.T) {
		repo := NewMemoryOutboxRepository()
		row := queued(base)
		require.NoError(t, repo.Save(ctx, row))

		require.NoError(t, repo.Delete(ctx, row.ID))

		assert.Equal(t, 0, repo.Size())

		// Deleting an already removed event is not an error; the drainer
		// may race a redundant instance.
		assert.NoError(t, repo.Delete(ctx, row.ID))
	})
}
