package domain

import (
	"context"

	"github.com/jl681/order-processing/shared/models"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	// OrderStatusPending is the only initial state.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusConfirmed is terminal: all five downstream notifications
	// succeeded and the creation event was published or queued.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusFailed is terminal: the fan-out step failed and the order
	// was rolled back.
	OrderStatusFailed OrderStatus = "FAILED"
)

// IsTerminal reports whether no transition leaves this status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusFailed
}

// Order is the aggregate persisted per accepted request. Version starts at 0
// on creation and advances by exactly one per persisted mutation.
type Order struct {
	ID              models.ID    `json:"id"`
	UserID          models.ID    `json:"user_id"`
	ProductID       int64        `json:"product_id"`
	Quantity        int          `json:"quantity"`
	Price           models.Money `json:"price"`
	ShippingAddress string       `json:"shipping_address"`
	Status          OrderStatus  `json:"status"`
	Timestamps      models.Timestamps
	Version         models.Version
}

// NewOrder creates a PENDING order from a validated request
func NewOrder(userID models.ID, productID int64, quantity int, price models.Money, shippingAddress string) (*Order, error) {
	if userID == "" {
		return nil, NewValidationError("user_id", "is required")
	}

	if productID <= 0 {
		return nil, NewValidationError("product_id", "must be positive")
	}

	if quantity <= 0 {
		return nil, NewValidationError("quantity", "must be positive")
	}

	if price.Amount < 0 {
		return nil, NewValidationError("price", "must not be negative")
	}

	return &Order{
		ID:              models.GenerateUUID(),
		UserID:          userID,
		ProductID:       productID,
		Quantity:        quantity,
		Price:           price,
		ShippingAddress: shippingAddress,
		Status:          OrderStatusPending,
		Timestamps:      models.NewTimestamps(),
		Version:         models.NewVersion(),
	}, nil
}

// TransitionTo moves the order to a new status. Terminal states reject every
// transition, including to themselves.
func (o *Order) TransitionTo(status OrderStatus) error {
	if o.Status.IsTerminal() {
		return NewValidationError("status", "order is already "+string(o.Status))
	}

	o.Status = status
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Next()
	return nil
}

// OrderRepository is the durable order store. Only the orchestrator mutates
// orders, and only through UpdateStatus.
type OrderRepository interface {
	// Create persists a new PENDING order at version 0.
	Create(ctx context.Context, order *Order) error

	// UpdateStatus atomically sets the status and increments the version iff
	// the stored version equals expectedVersion. Returns ErrVersionConflict
	// on a stale expectedVersion and ErrOrderNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id models.ID, expectedVersion int, status OrderStatus) error

	// FindByID returns the order or nil when the id is unknown.
	FindByID(ctx context.Context, id models.ID) (*Order, error)

	// FindByStatus lists orders in a given status, oldest first. Used to
	// locate orders stuck in PENDING.
	FindByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)
}
