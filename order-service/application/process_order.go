package application

import (
	"context"
	"log"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/models"
	"github.com/jl681/order-processing/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NotificationGateway fans out to the five downstream dependencies
type NotificationGateway interface {
	// NotifyAll issues all notification calls concurrently and waits for
	// every call to settle before reporting the aggregate outcome.
	NotifyAll(ctx context.Context, order *domain.Order) error

	// Compensate issues best-effort undo calls; it never returns an error.
	Compensate(ctx context.Context, order *domain.Order)
}

// EventPublisher announces accepted orders, falling back to the outbox when
// the broker is unavailable
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// Async schedules fire-and-forget work. Injected so tests can run
// compensation deterministically.
type Async func(fn func())

// ProcessOrderCommand represents an accepted order-creation request
type ProcessOrderCommand struct {
	UserID          string `json:"user_id"`
	ProductID       int64  `json:"product_id"`
	Quantity        int    `json:"quantity"`
	Price           int64  `json:"price"` // cents
	Currency        string `json:"currency"`
	ShippingAddress string `json:"shipping_address"`
}

// Validate rejects a malformed command before any saga work begins
func (cmd *ProcessOrderCommand) Validate() error {
	if cmd.UserID == "" {
		return domain.NewValidationError("user_id", "is required")
	}

	if _, err := models.NewID(cmd.UserID); err != nil {
		return domain.NewValidationError("user_id", "must be a UUID")
	}

	if cmd.ProductID <= 0 {
		return domain.NewValidationError("product_id", "must be positive")
	}

	if cmd.Quantity <= 0 {
		return domain.NewValidationError("quantity", "must be positive")
	}

	if cmd.Price < 0 {
		return domain.NewValidationError("price", "must not be negative")
	}

	return nil
}

// ProcessOrderResponse reports the terminal outcome of a saga invocation
type ProcessOrderResponse struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

// ProcessOrder drives the order saga: persist the order as PENDING, fan out
// to the five downstream dependencies, announce the order on the broker, and
// reconcile to a terminal status. There is no distributed transaction; a
// fan-out failure rolls the order back to FAILED and compensates already
// delivered side effects.
type ProcessOrder struct {
	orders    domain.OrderRepository
	gateway   NotificationGateway
	publisher EventPublisher
	async     Async
}

// NewProcessOrder creates the orchestrator use case
func NewProcessOrder(
	orders domain.OrderRepository,
	gateway NotificationGateway,
	publisher EventPublisher,
	async Async,
) *ProcessOrder {
	if async == nil {
		async = func(fn func()) { go fn() }
	}
	return &ProcessOrder{
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		async:     async,
	}
}

// Execute runs one saga invocation to its terminal outcome. The orchestrator
// never retries the fan-out; retry is the caller's responsibility via a new
// request.
func (uc *ProcessOrder) Execute(ctx context.Context, cmd *ProcessOrderCommand) (*ProcessOrderResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "process_order",
		trace.WithAttributes(
			attribute.String("user_id", cmd.UserID),
			attribute.Int64("product_id", cmd.ProductID),
			attribute.Int("quantity", cmd.Quantity),
		),
	)
	defer span.End()

	outcome := "rejected"
	defer func() {
		duration := time.Since(start)

		telemetry.RecordCounter(ctx, "orders_processed_total", "Total order saga invocations", 1,
			attribute.String("outcome", outcome),
		)
		telemetry.RecordHistogram(ctx, "order_saga_duration_seconds", "Order saga duration", duration.Seconds(),
			attribute.String("outcome", outcome),
		)
	}()

	if err := cmd.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	userID, err := models.NewID(cmd.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, domain.NewValidationError("user_id", "must be a UUID")
	}

	order, err := domain.NewOrder(userID, cmd.ProductID, cmd.Quantity, models.NewMoney(cmd.Price, cmd.Currency), cmd.ShippingAddress)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Step 1: persist as PENDING. Committed immediately so the record is
	// visible even if everything downstream fails.
	if err := uc.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to persist order")
	}

	span.SetAttributes(attribute.String("order_id", order.ID.String()))
	expectedVersion := order.Version.Value

	// Step 2: fan out to all five dependencies and wait for every call to
	// settle. Any single failure fails the step as a whole.
	if err := uc.gateway.NotifyAll(ctx, order); err != nil {
		span.RecordError(err)
		log.Printf("order %s fan-out failed, rolling back: %v", order.ID, err)

		if finalizeErr := uc.finalize(ctx, order, expectedVersion, domain.OrderStatusFailed); finalizeErr != nil {
			outcome = "error"
			return nil, finalizeErr
		}

		// Compensation runs detached from the request; its failures are
		// logged inside the gateway and never escalate.
		uc.async(func() {
			uc.gateway.Compensate(context.Background(), order)
		})

		outcome = "failed"
		return &ProcessOrderResponse{OrderID: order.ID.String(), Status: order.Status}, err
	}

	// Step 3: announce the order. Broker failure degrades to the outbox
	// fallback; an error here means the fallback write itself failed and
	// the event would be lost, which does fail the saga.
	if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
		span.RecordError(err)
		log.Printf("order %s event could not be queued, rolling back: %v", order.ID, err)

		if finalizeErr := uc.finalize(ctx, order, expectedVersion, domain.OrderStatusFailed); finalizeErr != nil {
			outcome = "error"
			return nil, finalizeErr
		}

		uc.async(func() {
			uc.gateway.Compensate(context.Background(), order)
		})

		outcome = "failed"
		return &ProcessOrderResponse{OrderID: order.ID.String(), Status: order.Status}, err
	}

	// Step 4: finalize success.
	if err := uc.finalize(ctx, order, expectedVersion, domain.OrderStatusConfirmed); err != nil {
		outcome = "error"
		span.RecordError(err)
		return nil, err
	}

	outcome = "confirmed"
	return &ProcessOrderResponse{OrderID: order.ID.String(), Status: order.Status}, nil
}

// finalize moves the order to a terminal status under optimistic concurrency.
// A version conflict means another writer mutated the order concurrently;
// that is fatal to this invocation and never retried with stale data.
func (uc *ProcessOrder) finalize(ctx context.Context, order *domain.Order, expectedVersion int, status domain.OrderStatus) error {
	if err := uc.orders.UpdateStatus(ctx, order.ID, expectedVersion, status); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return errors.Wrapf(err, "order %s was modified concurrently", order.ID)
		}
		return errors.Wrapf(err, "failed to finalize order %s as %s", order.ID, status)
	}

	// Mirror the persisted transition on the in-memory aggregate.
	order.Status = status
	order.Version = order.Version.Next()
	order.Timestamps = order.Timestamps.Update()
	return nil
}
