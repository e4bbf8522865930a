package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresOrderRepository implements domain.OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// postgresOrder represents an order row
type postgresOrder struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	ProductID       int64     `db:"product_id"`
	Quantity        int       `db:"quantity"`
	Price           int64     `db:"price"`
	Currency        string    `db:"currency"`
	ShippingAddress string    `db:"shipping_address"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	Version         int       `db:"version"`
}

// Create persists a new PENDING order at version 0
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, product_id, quantity, price, currency,
			shipping_address, status, created_at, updated_at, version
		) VALUES (
			:id, :user_id, :product_id, :quantity, :price, :currency,
			:shipping_address, :status, :created_at, :updated_at, :version
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(order))
	if err != nil {
		return domain.NewStorageError("insert order", err)
	}

	return nil
}

// UpdateStatus atomically sets the status and advances the version iff the
// stored version equals expectedVersion.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id models.ID, expectedVersion int, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`

	res, err := r.db.ExecContext(ctx, query, string(status), time.Now(), id.String(), expectedVersion)
	if err != nil {
		return domain.NewStorageError("update order status", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("update order status", err)
	}

	if affected == 1 {
		return nil
	}

	// Distinguish an unknown id from a stale version.
	var exists bool
	err = r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)", id.String())
	if err != nil {
		return domain.NewStorageError("check order existence", err)
	}

	if !exists {
		return errors.Wrapf(domain.ErrOrderNotFound, "id %s", id)
	}

	return errors.Wrapf(domain.ErrVersionConflict, "order %s expected version %d", id, expectedVersion)
}

// FindByID returns the order or nil when the id is unknown
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, product_id, quantity, price, currency,
			   shipping_address, status, created_at, updated_at, version
		FROM orders
		WHERE id = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, domain.NewStorageError("find order", err)
	}

	return r.toDomain(&pgOrder)
}

// FindByStatus lists orders in a given status, oldest first
func (r *PostgresOrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, product_id, quantity, price, currency,
			   shipping_address, status, created_at, updated_at, version
		FROM orders
		WHERE status = $1
		ORDER BY created_at ASC`

	var pgOrders []postgresOrder
	err := r.db.SelectContext(ctx, &pgOrders, query, string(status))
	if err != nil {
		return nil, domain.NewStorageError("find orders by status", err)
	}

	orders := make([]*domain.Order, len(pgOrders))
	for i, pgOrder := range pgOrders {
		order, err := r.toDomain(&pgOrder)
		if err != nil {
			return nil, err
		}
		orders[i] = order
	}

	return orders, nil
}

// toPostgres converts a domain order to the row model
func (r *PostgresOrderRepository) toPostgres(order *domain.Order) *postgresOrder {
	return &postgresOrder{
		ID:              order.ID.String(),
		UserID:          order.UserID.String(),
		ProductID:       order.ProductID,
		Quantity:        order.Quantity,
		Price:           order.Price.Amount,
		Currency:        order.Price.Currency,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		CreatedAt:       order.Timestamps.CreatedAt,
		UpdatedAt:       order.Timestamps.UpdatedAt,
		Version:         order.Version.Value,
	}
}

// toDomain converts a row model to a domain order
func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder) (*domain.Order, error) {
	id, err := models.NewID(pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	userID, err := models.NewID(pgOrder.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid user ID")
	}

	return &domain.Order{
		ID:              id,
		UserID:          userID,
		ProductID:       pgOrder.ProductID,
		Quantity:        pgOrder.Quantity,
		Price:           models.NewMoney(pgOrder.Price, pgOrder.Currency),
		ShippingAddress: pgOrder.ShippingAddress,
		Status:          domain.OrderStatus(pgOrder.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}, nil
}
