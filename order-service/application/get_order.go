package application

import (
	"context"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/models"
	"github.com/pkg/errors"
)

// GetOrderQuery requests the current state of one order
type GetOrderQuery struct {
	OrderID string `json:"order_id"`
}

// OrderView is the read model returned to callers polling for the outcome
type OrderView struct {
	OrderID         string             `json:"order_id"`
	UserID          string             `json:"user_id"`
	ProductID       int64              `json:"product_id"`
	Quantity        int                `json:"quantity"`
	Price           models.Money       `json:"price"`
	ShippingAddress string             `json:"shipping_address"`
	Status          domain.OrderStatus `json:"status"`
	Version         int                `json:"version"`
}

// GetOrder answers the status query path: ingress acknowledges processing
// started, and the final outcome is queried separately through this use case.
type GetOrder struct {
	orders domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orders domain.OrderRepository) *GetOrder {
	return &GetOrder{orders: orders}
}

// Execute returns the order view or ErrOrderNotFound
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*OrderView, error) {
	orderID, err := models.NewID(query.OrderID)
	if err != nil {
		return nil, domain.NewValidationError("order_id", "must be a UUID")
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}

	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	return toOrderView(order), nil
}

// ListPendingOrders lists orders still in PENDING, oldest first. Operators
// use it to find orders stuck mid-saga.
type ListPendingOrders struct {
	orders domain.OrderRepository
}

// NewListPendingOrders creates a new ListPendingOrders use case
func NewListPendingOrders(orders domain.OrderRepository) *ListPendingOrders {
	return &ListPendingOrders{orders: orders}
}

// Execute returns every PENDING order
func (uc *ListPendingOrders) Execute(ctx context.Context) ([]*OrderView, error) {
	orders, err := uc.orders.FindByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending orders")
	}

	views := make([]*OrderView, len(orders))
	for i, order := range orders {
		views[i] = toOrderView(order)
	}

	return views, nil
}

func toOrderView(order *domain.Order) *OrderView {
	return &OrderView{
		OrderID:         order.ID.String(),
		UserID:          order.UserID.String(),
		ProductID:       order.ProductID,
		Quantity:        order.Quantity,
		Price:           order.Price,
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status,
		Version:         order.Version.Value,
	}
}
