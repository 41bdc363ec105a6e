package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/payments"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts an order with its items in one transaction
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, orderID uint64) (*models.Order, error)
	// GetOrdersByUserID gets user orders
	GetOrdersByUserID(ctx context.Context, userID uint64) ([]models.Order, error)
	// GetOrderItems returns order lines
	GetOrderItems(ctx context.Context, orderID uint64) ([]models.OrderItem, error)
	// UpdateOrderStatus moves the order between statuses, guarded on the current status
	UpdateOrderStatus(ctx context.Context, orderID uint64, from, to, step string) error
	// SetPaymentIntentID stores the processor payment intent reference
	SetPaymentIntentID(ctx context.Context, orderID uint64, intentID string) error
}

// ProductRepository is interface for catalog lookups
type ProductRepository interface {
	// GetProductByID returns product by id
	GetProductByID(ctx context.Context, productID uint64) (*models.Product, error)
}

// OrderPaymentRepository creates payment rows at checkout
type OrderPaymentRepository interface {
	// CreatePayment inserts new payment
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}

// OrderStockRepository releases held stock on cancellation
type OrderStockRepository interface {
	// Release returns previously reserved units
	Release(ctx context.Context, productID uint64, qty int) error
}

// CheckoutClient creates processor checkout sessions
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, order *models.Order, successURL, cancelURL string) (*payments.CheckoutSession, error)
}

// CheckoutLine is one requested order line.
type CheckoutLine struct {
	ProductID uint64
	Quantity  int
}

// OrderService implements checkout and order lifecycle operations
type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	payRepo  OrderPaymentRepository
	stock    OrderStockRepository
	checkout CheckoutClient
}

// NewOrderService creates new OrderService instance
func NewOrderService(
	orders OrderRepository,
	products ProductRepository,
	payRepo OrderPaymentRepository,
	stock OrderStockRepository,
	checkout CheckoutClient,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		payRepo:  payRepo,
		stock:    stock,
		checkout: checkout,
	}
}

// Checkout creates an order with snapshotted prices, a pending payment
// row and a processor checkout session. The snapshot is taken here and
// never recomputed from the live product price.
func (os *OrderService) Checkout(ctx context.Context, user *models.User, lines []CheckoutLine, currency string, shippingAddr, billingAddr []byte, successURL, cancelURL string) (*models.Order, *payments.CheckoutSession, error) {
	if len(lines) == 0 {
		return nil, nil, errors.New("checkout: empty cart")
	}

	order := models.Order{
		UserID:          user.ID,
		Status:          models.OrderStatusNew,
		Currency:        currency,
		IsB2B:           user.IsB2B,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := 0.0

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, errors.New("checkout: non-positive quantity")
		}

		product, err := os.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, nil, err
		}

		price := product.PriceFor(user.IsB2B)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
			Currency:  currency,
		})
		total += price * float64(line.Quantity)
	}

	order.TotalAmount = total

	if _, err := os.orders.CreateOrder(ctx, &order, items); err != nil {
		return nil, nil, err
	}

	session, err := os.checkout.CreateCheckoutSession(ctx, &order, successURL, cancelURL)
	if err != nil {
		return nil, nil, err
	}

	payment := models.Payment{
		OrderID:           order.ID,
		Provider:          "stripe",
		ProviderSessionID: &session.ID,
		Amount:            order.TotalAmount,
		Currency:          order.Currency,
		Status:            models.PaymentStatusPending,
	}
	if session.PaymentIntent != "" {
		payment.ProviderPaymentID = &session.PaymentIntent

		if err := os.orders.SetPaymentIntentID(ctx, order.ID, session.PaymentIntent); err != nil {
			return nil, nil, err
		}
	}

	if _, err := os.payRepo.CreatePayment(ctx, &payment); err != nil {
		return nil, nil, err
	}

	return &order, session, nil
}

// Cancel moves the order to cancelled and releases exactly the stock
// its lines had reserved. Shipped and completed orders are rejected.
func (os *OrderService) Cancel(ctx context.Context, orderID uint64) error {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !models.CanTransit(order.Status, models.OrderStatusCancelled) {
		return models.ErrInvalidTransition
	}

	err = os.orders.UpdateOrderStatus(ctx, orderID, order.Status, models.OrderStatusCancelled, order.FulfillmentStep)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			// someone advanced the order in between; give up
			return models.ErrInvalidTransition
		}
		return err
	}

	items, err := os.orders.GetOrderItems(ctx, orderID)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.QuantityReserved == 0 {
			continue
		}

		if err := os.stock.Release(ctx, item.ProductID, item.QuantityReserved); err != nil {
			logger.Log.Error("cancel: stock release failed",
				zap.Uint64("order_id", orderID),
				zap.Uint64("product_id", item.ProductID),
				zap.Error(err))
		}
	}

	return nil
}

// ListUserOrders returns list of user orders
func (os *OrderService) ListUserOrders(ctx context.Context, userID uint64) ([]models.Order, error) {
	return os.orders.GetOrdersByUserID(ctx, userID)
}
