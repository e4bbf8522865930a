package domain

import (
	"testing"

	"github.com/jl681/order-processing/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	userID := models.GenerateUUID()

	tests := []struct {
		name          string
		userID        models.ID
		productID     int64
		quantity      int
		price         models.Money
		expectedError string
	}{
		{
			name:      "valid order",
			userID:    userID,
			productID: 42,
			quantity:  2,
			price:     models.NewMoney(1999, "USD"),
		},
		{
			name:      "zero price is allowed",
			userID:    userID,
			productID: 42,
			quantity:  1,
			price:     models.NewMoney(0, "USD"),
		},
		{
			name:          "missing user id",
			userID:        "",
			productID:     42,
			quantity:      2,
			price:         models.NewMoney(1999, "USD"),
			expectedError: "user_id",
		},
		{
			name:          "non-positive product id",
			userID:        userID,
			productID:     0,
			quantity:      2,
			price:         models.NewMoney(1999, "USD"),
			expectedError: "product_id",
		},
		{
			name:          "non-positive quantity",
			userID:        userID,
			productID:     42,
			quantity:      0,
			price:         models.NewMoney(1999, "USD"),
			expectedError: "quantity",
		},
		{
			name:          "negative price",
			userID:        userID,
			productID:     42,
			quantity:      2,
			price:         models.NewMoney(-1, "USD"),
			expectedError: "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(tt.userID, tt.productID, tt.quantity, tt.price, "123 Main St")

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, order)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, OrderStatusPending, order.Status)
			assert.Equal(t, 0, order.Version.Value)
			assert.NotEmpty(t, order.ID)
		})
	}
}

func TestOrder_TransitionTo(t *testing.T) {
	newOrder := func(t *testing.T) *Order {
		order, err := NewOrder(models.GenerateUUID(), 42, 2, models.NewMoney(1999, "USD"), "123 Main St")
		require.NoError(t, err)
		return order
	}

	t.Run("pending to confirmed advances the version", func(t *testing.T) {
		order := newOrder(t)

		err := order.TransitionTo(OrderStatusConfirmed)

		assert.NoError(t, err)
		assert.Equal(t, OrderStatusConfirmed, order.Status)
		assert.Equal(t, 1, order.Version.Value)
	})

	t.Run("pending to failed advances the version", func(t *testing.T) {
		order := newOrder(t)

		err := order.TransitionTo(OrderStatusFailed)

		assert.NoError(t, err)
		assert.Equal(t, OrderStatusFailed, order.Status)
		assert.Equal(t, 1, order.Version.Value)
	})

	t.Run("terminal states reject every transition", func(t *testing.T) {
		order := newOrder(t)
		require.NoError(t, order.TransitionTo(OrderStatusConfirmed))

		for _, status := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusFailed} {
			err := order.TransitionTo(status)
			assert.Error(t, err)
		}

		assert.Equal(t, OrderStatusConfirmed, order.Status)
		assert.Equal(t, 1, order.Version.Value)
	})
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.True(t, OrderStatusConfirmed.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
}
