package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalmart/coalmart/internal/models"
)

type fakeStockAdminStore struct {
	items   map[uint64]*models.StockItem
	ensured []uint64
}

func newFakeStockAdminStore(items ...*models.StockItem) *fakeStockAdminStore {
	store := &fakeStockAdminStore{items: make(map[uint64]*models.StockItem)}
	for _, item := range items {
		store.items[item.ProductID] = item
	}
	return store
}

func (f *fakeStockAdminStore) GetByProductID(_ context.Context, productID uint64) (*models.StockItem, error) {
	item, ok := f.items[productID]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return item, nil
}

func (f *fakeStockAdminStore) Adjust(_ context.Context, productID uint64, delta int) error {
	item, ok := f.items[productID]
	if !ok {
		return models.ErrDataNotFound
	}
	item.QuantityTotal += delta
	if item.QuantityTotal < 0 {
		item.QuantityTotal = 0
	}
	return nil
}

func (f *fakeStockAdminStore) Ensure(_ context.Context, productID uint64, location string) error {
	f.ensured = append(f.ensured, productID)
	if _, ok := f.items[productID]; !ok {
		f.items[productID] = &models.StockItem{ProductID: productID, Location: location}
	}
	return nil
}

func (f *fakeStockAdminStore) ListLowStock(_ context.Context, threshold int) ([]models.StockItem, error) {
	var out []models.StockItem
	for _, item := range f.items {
		if item.QuantityTotal <= threshold {
			out = append(out, *item)
		}
	}
	return out, nil
}

func TestAdjustCreatesRowOnFirstUse(t *testing.T) {
	store := newFakeStockAdminStore()
	svc := NewStockService(store, &fakeAlerter{}, 50)

	require.NoError(t, svc.Adjust(context.Background(), 10, 200))

	item, err := svc.GetStock(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 200, item.QuantityTotal)
	assert.Equal(t, "main", item.Location)
}

func TestAdjustClampsAtZero(t *testing.T) {
	store := newFakeStockAdminStore(&models.StockItem{ProductID: 10, QuantityTotal: 5})
	svc := NewStockService(store, &fakeAlerter{}, 50)

	require.NoError(t, svc.Adjust(context.Background(), 10, -20))

	assert.Zero(t, store.items[10].QuantityTotal)
}

func TestAdjustLeavesReservationsUntouched(t *testing.T) {
	// a manual write-off does not release what fulfillment holds, so
	// total may drop below reserved; Available then floors at zero and
	// the open reservations have to be resolved by the warehouse
	store := newFakeStockAdminStore(&models.StockItem{ProductID: 10, QuantityTotal: 10, QuantityReserved: 8})
	svc := NewStockService(store, &fakeAlerter{}, 50)

	require.NoError(t, svc.Adjust(context.Background(), 10, -5))

	item, err := svc.GetStock(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 5, item.QuantityTotal)
	assert.Equal(t, 8, item.QuantityReserved)
	assert.Zero(t, item.Available())
}

func TestCheckLowStockAlertsPerProduct(t *testing.T) {
	store := newFakeStockAdminStore(
		&models.StockItem{ProductID: 10, QuantityTotal: 12},
		&models.StockItem{ProductID: 11, QuantityTotal: 800},
		&models.StockItem{ProductID: 12, QuantityTotal: 50},
	)
	alerter := &fakeAlerter{}
	svc := NewStockService(store, alerter, 50)

	require.NoError(t, svc.CheckLowStock(context.Background()))

	assert.Len(t, alerter.raised, 2)
	for _, alertType := range alerter.raised {
		assert.Equal(t, "low_stock", alertType)
	}
}
