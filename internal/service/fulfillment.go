package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/shipping"
)

// FulfillmentOrderRepository is interface for interacting with order-related data
type FulfillmentOrderRepository interface {
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, orderID uint64) (*models.Order, error)
	// GetOrderItems returns order lines
	GetOrderItems(ctx context.Context, orderID uint64) ([]models.OrderItem, error)
	// UpdateOrderStatus moves the order between statuses, guarded on the current status
	UpdateOrderStatus(ctx context.Context, orderID uint64, from, to, step string) error
	// SetFulfillmentStep updates the fulfillment sub-state
	SetFulfillmentStep(ctx context.Context, orderID uint64, step string) error
	// SetItemReserved records the reserved quantity for a line
	SetItemReserved(ctx context.Context, itemID uint64, qty int) error
}

// FulfillmentStockRepository is interface for reserving warehouse stock
type FulfillmentStockRepository interface {
	// Reserve holds qty units of a product or returns ErrInsufficientStock
	Reserve(ctx context.Context, productID uint64, qty int) error
}

// FulfillmentTaskRepository is interface for creating warehouse tasks
type FulfillmentTaskRepository interface {
	// CreateTask inserts new warehouse task
	CreateTask(ctx context.Context, task *models.WarehouseTask) (*models.WarehouseTask, error)
	// GetTasksByOrderID returns the tasks of an order
	GetTasksByOrderID(ctx context.Context, orderID uint64) ([]models.WarehouseTask, error)
}

// FulfillmentShipmentRepository is interface for shipment rows
type FulfillmentShipmentRepository interface {
	// GetByOrderID returns shipments of order
	GetByOrderID(ctx context.Context, orderID uint64) ([]models.Shipment, error)
	// CreateShipment inserts new shipment
	CreateShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
}

// CarrierRegistry selects a shipping carrier by provider name
type CarrierRegistry interface {
	Get(name string) (shipping.Carrier, error)
	Default() string
}

// FulfillmentService transitions a paid order through stock
// reservation, warehouse task creation and shipment creation.
type FulfillmentService struct {
	orders    FulfillmentOrderRepository
	stock     FulfillmentStockRepository
	tasks     FulfillmentTaskRepository
	shipments FulfillmentShipmentRepository
	carriers  CarrierRegistry
}

// NewFulfillmentService creates new FulfillmentService instance
func NewFulfillmentService(
	orders FulfillmentOrderRepository,
	stock FulfillmentStockRepository,
	tasks FulfillmentTaskRepository,
	shipments FulfillmentShipmentRepository,
	carriers CarrierRegistry,
) *FulfillmentService {
	return &FulfillmentService{
		orders:    orders,
		stock:     stock,
		tasks:     tasks,
		shipments: shipments,
		carriers:  carriers,
	}
}

// PrepareShipment reserves stock for a paid order, creates its
// warehouse task and requests a shipment from the carrier.
//
// A missing order or an order that is not paid is a no-op, which makes
// repeated invocations (duplicate webhook deliveries) safe. An order
// left in processing by a crashed or carrier-failed run is resumed at
// the shipment stage without touching reservations again.
func (fs *FulfillmentService) PrepareShipment(ctx context.Context, orderID uint64) error {
	order, err := fs.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			logger.Log.Warn("prepare shipment: order not found", zap.Uint64("order_id", orderID))
			return nil
		}
		return err
	}

	switch {
	case order.Status == models.OrderStatusPaid:
		return fs.fulfill(ctx, order)
	case order.Status == models.OrderStatusProcessing && order.FulfillmentStep != models.FulfillmentStepShipment:
		// interrupted earlier run; the step records how far it got,
		// reservations are never touched again
		logger.Log.Info("prepare shipment: resuming interrupted fulfillment",
			zap.Uint64("order_id", orderID), zap.String("step", order.FulfillmentStep))
		return fs.resume(ctx, order)
	default:
		logger.Log.Warn("prepare shipment: order is not ready for fulfillment",
			zap.Uint64("order_id", orderID), zap.String("status", order.Status))
		return nil
	}
}

func (fs *FulfillmentService) fulfill(ctx context.Context, order *models.Order) error {
	// claim the order first: the guarded update lets exactly one of
	// several concurrent invocations proceed to the reservation loop
	err := fs.orders.UpdateOrderStatus(ctx, order.ID,
		models.OrderStatusPaid, models.OrderStatusProcessing, models.FulfillmentStepReserved)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			logger.Log.Warn("prepare shipment: lost the claim race", zap.Uint64("order_id", order.ID))
			return nil
		}
		return err
	}
	order.Status = models.OrderStatusProcessing
	order.FulfillmentStep = models.FulfillmentStepReserved

	items, err := fs.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := fs.stock.Reserve(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientStock) {
				// the line proceeds to fulfillment unreserved; this is
				// an overselling risk the warehouse has to resolve
				logger.Log.Error("prepare shipment: insufficient stock, line left unreserved",
					zap.Uint64("order_id", order.ID),
					zap.Uint64("product_id", item.ProductID),
					zap.Int("quantity", item.Quantity))
				continue
			}
			return err
		}

		if err := fs.orders.SetItemReserved(ctx, item.ID, item.Quantity); err != nil {
			return err
		}
	}

	return fs.resume(ctx, order)
}

// resume continues fulfillment from the recorded step.
func (fs *FulfillmentService) resume(ctx context.Context, order *models.Order) error {
	if order.FulfillmentStep == models.FulfillmentStepReserved {
		// a crash after CreateTask but before the step advanced leaves
		// the order on reserved with the task already written; creating
		// another one would hand the warehouse a duplicate
		existing, err := fs.tasks.GetTasksByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			task := models.WarehouseTask{
				OrderID: order.ID,
				Status:  models.TaskStatusPending,
			}
			if _, err := fs.tasks.CreateTask(ctx, &task); err != nil {
				return err
			}
		}

		if err := fs.orders.SetFulfillmentStep(ctx, order.ID, models.FulfillmentStepTask); err != nil {
			return err
		}
		order.FulfillmentStep = models.FulfillmentStepTask
	}

	return fs.requestShipment(ctx, order)
}

// requestShipment creates the carrier shipment unless one already
// exists, then moves the order to shipped. A carrier failure leaves
// the order in processing for a later retry and is not an error.
func (fs *FulfillmentService) requestShipment(ctx context.Context, order *models.Order) error {
	existing, err := fs.shipments.GetByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		carrier, err := fs.carriers.Get(fs.carriers.Default())
		if err != nil {
			return err
		}

		data, err := carrier.CreateShipment(ctx, order.ID)
		if err != nil {
			logger.Log.Error("prepare shipment: carrier request failed, order stays in processing",
				zap.Uint64("order_id", order.ID), zap.Error(err))
			return nil
		}

		shipment := models.Shipment{
			OrderID:        order.ID,
			Provider:       data.Provider,
			TrackingNumber: data.TrackingNumber,
			Status:         "created",
			LabelURL:       data.LabelURL,
			RawPayload:     data.Raw,
		}
		if _, err := fs.shipments.CreateShipment(ctx, &shipment); err != nil {
			return err
		}
	}

	err = fs.orders.UpdateOrderStatus(ctx, order.ID,
		models.OrderStatusProcessing, models.OrderStatusShipped, models.FulfillmentStepShipment)
	if err != nil && !errors.Is(err, models.ErrDataNotFound) {
		return err
	}

	return nil
}
