package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (user_id, status, total_amount, currency, is_b2b, shipping_address, billing_address)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id, created_at, updated_at
`
	insertOrderItemQuery = `
						INSERT INTO order_items (order_id, product_id, quantity, unit_price, currency)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id
`
	selectOrderByIDQuery = `
						SELECT id, user_id, status, fulfillment_step, total_amount, currency, is_b2b,
						       shipping_address, billing_address, payment_intent_id, created_at, updated_at
						FROM orders
						WHERE id = $1
`
	selectOrdersByUserIDQuery = `
						SELECT id, user_id, status, fulfillment_step, total_amount, currency, is_b2b,
						       shipping_address, billing_address, payment_intent_id, created_at, updated_at
						FROM orders
						WHERE user_id = $1
						ORDER BY created_at DESC
`
	selectOrderItemsQuery = `
						SELECT id, order_id, product_id, quantity, quantity_reserved, unit_price, currency
						FROM order_items
						WHERE order_id = $1
						ORDER BY id
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, fulfillment_step = $2, updated_at = now()
						WHERE id = $3 AND status = $4
`
	updateOrderStepQuery = `
						UPDATE orders
						SET fulfillment_step = $1, updated_at = now()
						WHERE id = $2
`
	updateOrderIntentQuery = `
						UPDATE orders
						SET payment_intent_id = $1, updated_at = now()
						WHERE id = $2
`
	updateItemReservedQuery = `
						UPDATE order_items
						SET quantity_reserved = $1
						WHERE id = $2
`
	selectSalesSummaryQuery = `
						SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
						FROM orders
						WHERE created_at >= $1
`
)

// OrderRepository provides access to order and order item rows
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts an order together with its items in one transaction.
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	err := or.db.WithinTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrderQuery,
			order.UserID, order.Status, order.TotalAmount, order.Currency,
			order.IsB2B, order.ShippingAddress, order.BillingAddress,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			err := tx.QueryRow(ctx, insertOrderItemQuery,
				order.ID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice, items[i].Currency,
			).Scan(&items[i].ID)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, orderID uint64) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, orderID).Scan(
		&order.ID, &order.UserID, &order.Status, &order.FulfillmentStep,
		&order.TotalAmount, &order.Currency, &order.IsB2B,
		&order.ShippingAddress, &order.BillingAddress, &order.PaymentIntentID,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrdersByUserID gets user orders
func (or *OrderRepository) GetOrdersByUserID(ctx context.Context, userID uint64) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, selectOrdersByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		err = rows.Scan(&order.ID, &order.UserID, &order.Status, &order.FulfillmentStep,
			&order.TotalAmount, &order.Currency, &order.IsB2B,
			&order.ShippingAddress, &order.BillingAddress, &order.PaymentIntentID,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrderItems returns order lines
func (or *OrderRepository) GetOrderItems(ctx context.Context, orderID uint64) ([]models.OrderItem, error) {
	rows, err := or.db.Query(ctx, selectOrderItemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {
		item := models.OrderItem{}
		err = rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.QuantityReserved, &item.UnitPrice, &item.Currency)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateOrderStatus moves the order from one status to another together
// with its fulfillment step. The update is guarded: it only applies
// when the row is still in the expected status, so a concurrent caller
// that lost the race gets ErrDataNotFound instead of a double write.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID uint64, from, to, step string) error {
	if !models.CanTransit(from, to) {
		return models.ErrInvalidTransition
	}

	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, to, step, orderID, from)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SetFulfillmentStep updates only the fulfillment sub-state.
func (or *OrderRepository) SetFulfillmentStep(ctx context.Context, orderID uint64, step string) error {
	cmd, err := or.db.Exec(ctx, updateOrderStepQuery, step, orderID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SetPaymentIntentID stores the processor payment intent reference.
func (or *OrderRepository) SetPaymentIntentID(ctx context.Context, orderID uint64, intentID string) error {
	cmd, err := or.db.Exec(ctx, updateOrderIntentQuery, intentID, orderID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// GetSalesSummary returns the order count and total amount of all
// orders created since the given moment.
func (or *OrderRepository) GetSalesSummary(ctx context.Context, since time.Time) (int, float64, error) {
	var count int
	var total float64
	err := or.db.QueryRow(ctx, selectSalesSummaryQuery, since).Scan(&count, &total)
	if err != nil {
		return 0, 0, err
	}

	return count, total, nil
}

// SetItemReserved records the quantity actually held against stock for a line.
func (or *OrderRepository) SetItemReserved(ctx context.Context, itemID uint64, qty int) error {
	cmd, err := or.db.Exec(ctx, updateItemReservedQuery, qty, itemID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
