package service

import (
	"context"

	"github.com/coalmart/coalmart/internal/models"
)

// StockRepository is interface for interacting with warehouse stock
type StockRepository interface {
	// GetByProductID returns the stock row for a product
	GetByProductID(ctx context.Context, productID uint64) (*models.StockItem, error)
	// Adjust changes quantity_total by delta, clamped at zero
	Adjust(ctx context.Context, productID uint64, delta int) error
	// Ensure creates a zero-quantity stock row if absent
	Ensure(ctx context.Context, productID uint64, location string) error
	// ListLowStock returns stock rows at or below the threshold
	ListLowStock(ctx context.Context, threshold int) ([]models.StockItem, error)
}

// StockService implements manual inventory operations and the
// low-stock sweep.
type StockService struct {
	repo      StockRepository
	alerter   Alerter
	threshold int
}

// NewStockService creates new StockService instance
func NewStockService(repo StockRepository, alerter Alerter, threshold int) *StockService {
	return &StockService{
		repo:      repo,
		alerter:   alerter,
		threshold: threshold,
	}
}

// GetStock returns the stock row for a product
func (ss *StockService) GetStock(ctx context.Context, productID uint64) (*models.StockItem, error) {
	return ss.repo.GetByProductID(ctx, productID)
}

// Adjust applies a manual restock or correction. The row is created
// on first use so new products can be restocked directly.
func (ss *StockService) Adjust(ctx context.Context, productID uint64, delta int) error {
	if err := ss.repo.Ensure(ctx, productID, "main"); err != nil {
		return err
	}

	return ss.repo.Adjust(ctx, productID, delta)
}

// CheckLowStock raises one alert per product at or below the threshold.
func (ss *StockService) CheckLowStock(ctx context.Context) error {
	items, err := ss.repo.ListLowStock(ctx, ss.threshold)
	if err != nil {
		return err
	}

	for _, item := range items {
		ss.alerter.Raise(ctx, "low_stock", map[string]any{
			"product_id":     item.ProductID,
			"quantity_total": item.QuantityTotal,
			"location":       item.Location,
		})
	}

	return nil
}
