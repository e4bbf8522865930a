package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/models"
	"github.com/pkg/errors"
)

// MemoryOrderRepository implements domain.OrderRepository in process memory.
// It honors the same optimistic-concurrency contract as the Postgres
// implementation and backs tests and local runs without a database.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[models.ID]domain.Order
}

// NewMemoryOrderRepository creates an empty in-memory order store
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[models.ID]domain.Order),
	}
}

// Create persists a new PENDING order at version 0
func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.NewStorageError("insert order", errors.Errorf("duplicate id %s", order.ID))
	}

	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus sets the status and advances the version iff the stored
// version equals expectedVersion. Exactly one of two racing writers wins.
func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, id models.ID, expectedVersion int, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.orders[id]
	if !exists {
		return errors.Wrapf(domain.ErrOrderNotFound, "id %s", id)
	}

	if stored.Version.Value != expectedVersion {
		return errors.Wrapf(domain.ErrVersionConflict, "order %s expected version %d", id, expectedVersion)
	}

	stored.Status = status
	stored.Version = stored.Version.Next()
	stored.Timestamps = stored.Timestamps.Update()
	r.orders[id] = stored
	return nil
}

// FindByID returns a copy of the order or nil when the id is unknown
func (r *MemoryOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.orders[id]
	if !exists {
		return nil, nil
	}

	order := stored
	return &order, nil
}

// FindByStatus lists orders in a given status, oldest first
func (r *MemoryOrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []*domain.Order
	for _, stored := range r.orders {
		if stored.Status == status {
			order := stored
			orders = append(orders, &order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Timestamps.CreatedAt.Before(orders[j].Timestamps.CreatedAt)
	})

	return orders, nil
}

// MemoryOutboxRepository implements domain.OutboxRepository in process memory
type MemoryOutboxRepository struct {
	mu     sync.Mutex
	events []domain.OutboxEvent
}

// NewMemoryOutboxRepository creates an empty in-memory outbox
func NewMemoryOutboxRepository() *MemoryOutboxRepository {
	return &MemoryOutboxRepository{}
}

// Save appends an undelivered event
func (r *MemoryOutboxRepository) Save(ctx context.Context, event *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	return nil
}

// FindPending returns up to limit queued events, oldest first
func (r *MemoryOutboxRepository) FindPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]domain.OutboxEvent, len(r.events))
	copy(sorted, r.events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}

	events := make([]*domain.OutboxEvent, limit)
	for i := 0; i < limit; i++ {
		event := sorted[i]
		events[i] = &event
	}

	return events, nil
}

// Delete removes a delivered event
func (r *MemoryOutboxRepository) Delete(ctx context.Context, id models.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, event := range r.events {
		if event.ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}

	return nil
}

// Size reports the number of queued events
func (r *MemoryOutboxRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// ensure interface compliance
var (
	_ domain.OrderRepository  = (*MemoryOrderRepository)(nil)
	_ domain.OutboxRepository = (*MemoryOutboxRepository)(nil)
	_ domain.OrderRepository  = (*PostgresOrderRepository)(nil)
	_ domain.OutboxRepository = (*PostgresOutboxRepository)(nil)
)
