package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	selectStockByProductQuery = `
						SELECT id, product_id, quantity_total, quantity_reserved, location, created_at, updated_at
						FROM stock_items
						WHERE product_id = $1
`
	// guarded reservation: only applies when enough unreserved stock
	// remains, so concurrent reservations serialize on the row and
	// can never oversell it.
	reserveStockQuery = `
						UPDATE stock_items
						SET quantity_reserved = quantity_reserved + $1, updated_at = now()
						WHERE product_id = $2 AND quantity_total - quantity_reserved >= $1
`
	releaseStockQuery = `
						UPDATE stock_items
						SET quantity_reserved = GREATEST(quantity_reserved - $1, 0), updated_at = now()
						WHERE product_id = $2
`
	adjustStockQuery = `
						UPDATE stock_items
						SET quantity_total = GREATEST(quantity_total + $1, 0), updated_at = now()
						WHERE product_id = $2
`
	insertStockQuery = `
						INSERT INTO stock_items (product_id, quantity_total, quantity_reserved, location)
						VALUES ($1, 0, 0, $2)
						ON CONFLICT (product_id) DO NOTHING
`
	selectLowStockQuery = `
						SELECT id, product_id, quantity_total, quantity_reserved, location, created_at, updated_at
						FROM stock_items
						WHERE quantity_total <= $1
`
)

// StockRepository provides access to warehouse stock rows
type StockRepository struct {
	db *postgres.DB
}

// NewStockRepository creates new StockRepository instance
func NewStockRepository(db *postgres.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetByProductID returns the stock row for a product
func (sr *StockRepository) GetByProductID(ctx context.Context, productID uint64) (*models.StockItem, error) {
	stock := models.StockItem{}
	err := sr.db.QueryRow(ctx, selectStockByProductQuery, productID).Scan(
		&stock.ID, &stock.ProductID, &stock.QuantityTotal, &stock.QuantityReserved,
		&stock.Location, &stock.CreatedAt, &stock.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &stock, nil
}

// Reserve holds qty units of a product. The reservation is a single
// compare-and-swap on the stock row; ErrInsufficientStock is returned
// when not enough unreserved stock remains, or when the product has no
// stock row at all.
func (sr *StockRepository) Reserve(ctx context.Context, productID uint64, qty int) error {
	cmd, err := sr.db.Exec(ctx, reserveStockQuery, qty, productID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrInsufficientStock
	}

	return nil
}

// Release returns previously reserved units, flooring at zero.
func (sr *StockRepository) Release(ctx context.Context, productID uint64, qty int) error {
	cmd, err := sr.db.Exec(ctx, releaseStockQuery, qty, productID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// Adjust changes quantity_total by delta for restock or correction,
// clamped at zero.
func (sr *StockRepository) Adjust(ctx context.Context, productID uint64, delta int) error {
	cmd, err := sr.db.Exec(ctx, adjustStockQuery, delta, productID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// Ensure creates a zero-quantity stock row for a product if absent.
func (sr *StockRepository) Ensure(ctx context.Context, productID uint64, location string) error {
	_, err := sr.db.Exec(ctx, insertStockQuery, productID, location)
	return err
}

// ListLowStock returns stock rows at or below the threshold.
func (sr *StockRepository) ListLowStock(ctx context.Context, threshold int) ([]models.StockItem, error) {
	rows, err := sr.db.Query(ctx, selectLowStockQuery, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.StockItem{}

	for rows.Next() {
		stock := models.StockItem{}
		err = rows.Scan(&stock.ID, &stock.ProductID, &stock.QuantityTotal, &stock.QuantityReserved,
			&stock.Location, &stock.CreatedAt, &stock.UpdatedAt)
		if err != nil {
			continue
		}
		items = append(items, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
