package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("accepts a valid UUID", func(t *testing.T) {
		id, err := NewID("550e8400-e29b-41d4-a716-446655440010")

		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440010", id.String())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := NewID("not-a-uuid")
		assert.Error(t, err)
	})

	t.Run("generated ids are valid and unique", func(t *testing.T) {
		a := GenerateUUID()
		b := GenerateUUID()

		_, err := NewID(a.String())
		assert.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestVersion(t *testing.T) {
	v := NewVersion()
	assert.Equal(t, 0, v.Value)

	next := v.Next()
	assert.Equal(t, 1, next.Value)
	// Next does not mutate the receiver.
	assert.Equal(t, 0, v.Value)
}

func TestMoney(t *testing.T) {
	t.Run("add with matching currency", func(t *testing.T) {
		sum, err := NewMoney(1000, "USD").Add(NewMoney(500, "USD"))

		require.NoError(t, err)
		assert.Equal(t, int64(1500), sum.Amount)
	})

	t.Run("add with mismatched currency", func(t *testing.T) {
		_, err := NewMoney(1000, "USD").Add(NewMoney(500, "EUR"))
		assert.Error(t, err)
	})

	t.Run("multiply scales the amount", func(t *testing.T) {
		total := NewMoney(1999, "USD").Multiply(3)
		assert.Equal(t, int64(5997), total.Amount)
		assert.Equal(t, "USD", total.Currency)
	})

	t.Run("predicates", func(t *testing.T) {
		assert.True(t, NewMoney(0, "USD").IsZero())
		assert.True(t, NewMoney(1, "USD").IsPositive())
		assert.False(t, NewMoney(-1, "USD").IsPositive())
	})
}
