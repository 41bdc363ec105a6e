package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/shipping"
)

// fakeOrderStore keeps orders and items in memory and mimics the
// guarded status update of the real repository.
type fakeOrderStore struct {
	orders map[uint64]*models.Order
	items  map[uint64][]models.OrderItem

	statusUpdates int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[uint64]*models.Order),
		items:  make(map[uint64][]models.OrderItem),
	}
}

func (f *fakeOrderStore) GetOrderByID(_ context.Context, orderID uint64) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderStore) GetOrderItems(_ context.Context, orderID uint64) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID uint64, from, to, step string) error {
	if !models.CanTransit(from, to) {
		return models.ErrInvalidTransition
	}
	order, ok := f.orders[orderID]
	if !ok || order.Status != from {
		return models.ErrDataNotFound
	}
	order.Status = to
	order.FulfillmentStep = step
	f.statusUpdates++
	return nil
}

func (f *fakeOrderStore) SetFulfillmentStep(_ context.Context, orderID uint64, step string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return models.ErrDataNotFound
	}
	order.FulfillmentStep = step
	return nil
}

func (f *fakeOrderStore) SetItemReserved(_ context.Context, itemID uint64, qty int) error {
	for orderID := range f.items {
		for i := range f.items[orderID] {
			if f.items[orderID][i].ID == itemID {
				f.items[orderID][i].QuantityReserved = qty
				return nil
			}
		}
	}
	return models.ErrDataNotFound
}

func (f *fakeOrderStore) GetOrdersByUserID(_ context.Context, userID uint64) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) SetPaymentIntentID(_ context.Context, orderID uint64, intentID string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return models.ErrDataNotFound
	}
	order.PaymentIntentID = &intentID
	return nil
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	order.ID = uint64(len(f.orders) + 1)
	f.orders[order.ID] = order
	for i := range items {
		items[i].ID = uint64(i + 1)
		items[i].OrderID = order.ID
	}
	f.items[order.ID] = items
	return order, nil
}

// fakeStockStore tracks per-product reservations against fixed totals.
type fakeStockStore struct {
	total    map[uint64]int
	reserved map[uint64]int
	released map[uint64]int
}

func newFakeStockStore(total map[uint64]int) *fakeStockStore {
	return &fakeStockStore{
		total:    total,
		reserved: make(map[uint64]int),
		released: make(map[uint64]int),
	}
}

func (f *fakeStockStore) Reserve(_ context.Context, productID uint64, qty int) error {
	if f.total[productID]-f.reserved[productID] < qty {
		return models.ErrInsufficientStock
	}
	f.reserved[productID] += qty
	return nil
}

func (f *fakeStockStore) Release(_ context.Context, productID uint64, qty int) error {
	f.released[productID] += qty
	if f.reserved[productID] < qty {
		f.reserved[productID] = 0
		return nil
	}
	f.reserved[productID] -= qty
	return nil
}

type fakeTaskStore struct {
	tasks []models.WarehouseTask
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *models.WarehouseTask) (*models.WarehouseTask, error) {
	task.ID = uint64(len(f.tasks) + 1)
	f.tasks = append(f.tasks, *task)
	return task, nil
}

func (f *fakeTaskStore) GetTasksByOrderID(_ context.Context, orderID uint64) ([]models.WarehouseTask, error) {
	var out []models.WarehouseTask
	for i := range f.tasks {
		if f.tasks[i].OrderID == orderID {
			out = append(out, f.tasks[i])
		}
	}
	return out, nil
}

type fakeShipmentStore struct {
	shipments []models.Shipment
}

func (f *fakeShipmentStore) GetByOrderID(_ context.Context, orderID uint64) ([]models.Shipment, error) {
	var out []models.Shipment
	for i := range f.shipments {
		if f.shipments[i].OrderID == orderID {
			out = append(out, f.shipments[i])
		}
	}
	return out, nil
}

func (f *fakeShipmentStore) CreateShipment(_ context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	shipment.ID = uint64(len(f.shipments) + 1)
	f.shipments = append(f.shipments, *shipment)
	return shipment, nil
}

// fakeCarrier counts create calls and can be forced to fail.
type fakeCarrier struct {
	createCalls int
	failCreate  bool
}

func (f *fakeCarrier) CreateShipment(_ context.Context, orderID uint64) (*shipping.ShipmentData, error) {
	f.createCalls++
	if f.failCreate {
		return nil, errors.New("carrier unavailable")
	}
	return &shipping.ShipmentData{
		Provider:       "dpd",
		TrackingNumber: "PKG-1",
	}, nil
}

func (f *fakeCarrier) GetShipmentStatus(_ context.Context, trackingNumber string) (*shipping.StatusData, error) {
	return &shipping.StatusData{TrackingNumber: trackingNumber, Status: "in_transit"}, nil
}

type fakeRegistry struct {
	carrier shipping.Carrier
}

func (f *fakeRegistry) Get(string) (shipping.Carrier, error) { return f.carrier, nil }
func (f *fakeRegistry) Default() string                      { return "dpd" }

func newFulfillmentFixture(order *models.Order, items []models.OrderItem, stock map[uint64]int) (*FulfillmentService, *fakeOrderStore, *fakeStockStore, *fakeTaskStore, *fakeShipmentStore, *fakeCarrier) {
	orders := newFakeOrderStore()
	if order != nil {
		orders.orders[order.ID] = order
		orders.items[order.ID] = items
	}
	stockStore := newFakeStockStore(stock)
	tasks := &fakeTaskStore{}
	shipments := &fakeShipmentStore{}
	carrier := &fakeCarrier{}

	svc := NewFulfillmentService(orders, stockStore, tasks, shipments, &fakeRegistry{carrier: carrier})
	return svc, orders, stockStore, tasks, shipments, carrier
}

func TestPrepareShipmentMissingOrderIsNoop(t *testing.T) {
	svc, _, stock, tasks, shipments, _ := newFulfillmentFixture(nil, nil, nil)

	err := svc.PrepareShipment(context.Background(), 404)

	require.NoError(t, err)
	assert.Empty(t, stock.reserved)
	assert.Empty(t, tasks.tasks)
	assert.Empty(t, shipments.shipments)
}

func TestPrepareShipmentUnpaidOrderIsNoop(t *testing.T) {
	order := &models.Order{ID: 1, Status: models.OrderStatusNew}
	svc, orders, stock, tasks, _, _ := newFulfillmentFixture(order,
		[]models.OrderItem{{ID: 1, OrderID: 1, ProductID: 10, Quantity: 2}},
		map[uint64]int{10: 100})

	err := svc.PrepareShipment(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNew, orders.orders[1].Status)
	assert.Empty(t, stock.reserved)
	assert.Empty(t, tasks.tasks)
}

func TestPrepareShipmentHappyPath(t *testing.T) {
	order := &models.Order{ID: 42, Status: models.OrderStatusPaid}
	items := []models.OrderItem{
		{ID: 1, OrderID: 42, ProductID: 10, Quantity: 2},
		{ID: 2, OrderID: 42, ProductID: 11, Quantity: 1},
	}
	svc, orders, stock, tasks, shipments, carrier := newFulfillmentFixture(order, items,
		map[uint64]int{10: 5, 11: 5})

	err := svc.PrepareShipment(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, orders.orders[42].Status)
	assert.Equal(t, models.FulfillmentStepShipment, orders.orders[42].FulfillmentStep)
	assert.Equal(t, 2, stock.reserved[10])
	assert.Equal(t, 1, stock.reserved[11])
	assert.Equal(t, 2, orders.items[42][0].QuantityReserved)
	assert.Equal(t, 1, orders.items[42][1].QuantityReserved)
	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, uint64(42), tasks.tasks[0].OrderID)
	assert.Equal(t, models.TaskStatusPending, tasks.tasks[0].Status)
	require.Len(t, shipments.shipments, 1)
	assert.Equal(t, "PKG-1", shipments.shipments[0].TrackingNumber)
	assert.Equal(t, 1, carrier.createCalls)
}

func TestPrepareShipmentIsIdempotent(t *testing.T) {
	order := &models.Order{ID: 42, Status: models.OrderStatusPaid}
	items := []models.OrderItem{{ID: 1, OrderID: 42, ProductID: 10, Quantity: 2}}
	svc, orders, stock, tasks, shipments, carrier := newFulfillmentFixture(order, items,
		map[uint64]int{10: 5})

	require.NoError(t, svc.PrepareShipment(context.Background(), 42))
	require.NoError(t, svc.PrepareShipment(context.Background(), 42))

	assert.Equal(t, models.OrderStatusShipped, orders.orders[42].Status)
	assert.Equal(t, 2, stock.reserved[10], "stock must be reserved exactly once")
	assert.Len(t, tasks.tasks, 1, "warehouse task must be created exactly once")
	assert.Len(t, shipments.shipments, 1, "shipment must be requested exactly once")
	assert.Equal(t, 1, carrier.createCalls)
}

func TestPrepareShipmentInsufficientStockSkipsLine(t *testing.T) {
	order := &models.Order{ID: 7, Status: models.OrderStatusPaid}
	items := []models.OrderItem{
		{ID: 1, OrderID: 7, ProductID: 10, Quantity: 3},
		{ID: 2, OrderID: 7, ProductID: 11, Quantity: 99},
	}
	svc, orders, stock, tasks, shipments, _ := newFulfillmentFixture(order, items,
		map[uint64]int{10: 5, 11: 1})

	err := svc.PrepareShipment(context.Background(), 7)

	// the short line does not block fulfillment, it just stays unreserved
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, orders.orders[7].Status)
	assert.Equal(t, 3, stock.reserved[10])
	assert.Zero(t, stock.reserved[11])
	assert.Equal(t, 3, orders.items[7][0].QuantityReserved)
	assert.Zero(t, orders.items[7][1].QuantityReserved)
	assert.Len(t, tasks.tasks, 1)
	assert.Len(t, shipments.shipments, 1)
}

func TestPrepareShipmentCarrierFailureKeepsProcessing(t *testing.T) {
	order := &models.Order{ID: 9, Status: models.OrderStatusPaid}
	items := []models.OrderItem{{ID: 1, OrderID: 9, ProductID: 10, Quantity: 1}}
	svc, orders, stock, tasks, shipments, carrier := newFulfillmentFixture(order, items,
		map[uint64]int{10: 5})
	carrier.failCreate = true

	err := svc.PrepareShipment(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, orders.orders[9].Status)
	assert.Equal(t, models.FulfillmentStepTask, orders.orders[9].FulfillmentStep)
	assert.Len(t, tasks.tasks, 1)
	assert.Empty(t, shipments.shipments)

	// the carrier recovers; the retry resumes at the shipment stage
	carrier.failCreate = false
	require.NoError(t, svc.PrepareShipment(context.Background(), 9))

	assert.Equal(t, models.OrderStatusShipped, orders.orders[9].Status)
	assert.Equal(t, 1, stock.reserved[10], "retry must not reserve again")
	assert.Len(t, tasks.tasks, 1, "retry must not create another task")
	assert.Len(t, shipments.shipments, 1)
	assert.Equal(t, 2, carrier.createCalls)
}

func TestPrepareShipmentResumesAfterCrashBeforeTask(t *testing.T) {
	// a run that crashed right after reserving left the order in
	// processing with the reserved step recorded
	order := &models.Order{ID: 5, Status: models.OrderStatusProcessing, FulfillmentStep: models.FulfillmentStepReserved}
	items := []models.OrderItem{{ID: 1, OrderID: 5, ProductID: 10, Quantity: 2, QuantityReserved: 2}}
	svc, orders, stock, tasks, shipments, _ := newFulfillmentFixture(order, items,
		map[uint64]int{10: 5})

	err := svc.PrepareShipment(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, orders.orders[5].Status)
	assert.Empty(t, stock.reserved, "resumption must not touch reservations")
	assert.Len(t, tasks.tasks, 1)
	assert.Len(t, shipments.shipments, 1)
}

func TestPrepareShipmentResumesAfterCrashBeforeStepAdvance(t *testing.T) {
	// a run that crashed after writing the task but before advancing
	// the step leaves the order on reserved with the task on disk;
	// resumption must pick that task up instead of creating a second one
	order := &models.Order{ID: 6, Status: models.OrderStatusProcessing, FulfillmentStep: models.FulfillmentStepReserved}
	items := []models.OrderItem{{ID: 1, OrderID: 6, ProductID: 10, Quantity: 1, QuantityReserved: 1}}
	svc, orders, _, tasks, shipments, _ := newFulfillmentFixture(order, items,
		map[uint64]int{10: 5})
	tasks.tasks = append(tasks.tasks, models.WarehouseTask{ID: 1, OrderID: 6, Status: models.TaskStatusPending})

	err := svc.PrepareShipment(context.Background(), 6)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, orders.orders[6].Status)
	assert.Len(t, tasks.tasks, 1, "resumption must not create a duplicate task")
	assert.Equal(t, models.FulfillmentStepTask, orders.orders[6].FulfillmentStep)
	assert.Len(t, shipments.shipments, 1)
}
