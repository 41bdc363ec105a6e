package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/payments"
)

// PaymentRepository is interface for interacting with payment-related data
type PaymentRepository interface {
	// GetByProviderPaymentID returns payment by processor payment id
	GetByProviderPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	// GetByProviderSessionID returns payment by processor session id
	GetByProviderSessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	// CompletePayment marks payment completed and order paid in one transaction
	CompletePayment(ctx context.Context, payment *models.Payment, paymentIntentID *string, raw []byte) error
}

// Fulfillment triggers order fulfillment after payment
type Fulfillment interface {
	PrepareShipment(ctx context.Context, orderID uint64) error
}

// PaymentService translates processor webhook events into payment and
// order state changes.
type PaymentService struct {
	repo          PaymentRepository
	fulfillment   Fulfillment
	webhookSecret string
	// skipVerify disables signature verification; it is only ever set
	// in the development environment
	skipVerify bool
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(repo PaymentRepository, fulfillment Fulfillment, webhookSecret string, skipVerify bool) *PaymentService {
	return &PaymentService{
		repo:          repo,
		fulfillment:   fulfillment,
		webhookSecret: webhookSecret,
		skipVerify:    skipVerify,
	}
}

// HandleWebhook processes one raw webhook delivery.
//
// Only signature and payload problems are returned as errors; every
// other outcome acknowledges the delivery so the processor stops
// redelivering events this system cannot act on.
func (ps *PaymentService) HandleWebhook(ctx context.Context, body []byte, sigHeader string) error {
	if !ps.skipVerify {
		if err := payments.VerifySignature(body, sigHeader, ps.webhookSecret, time.Now()); err != nil {
			return err
		}
	}

	event, err := payments.ParseEvent(body)
	if err != nil {
		return err
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		return ps.handlePaymentSucceeded(ctx, event)
	case payments.EventSessionCompleted:
		return ps.handleSessionCompleted(ctx, event)
	default:
		logger.Log.Info("webhook: unhandled event type", zap.String("type", event.Type))
		return nil
	}
}

func (ps *PaymentService) handlePaymentSucceeded(ctx context.Context, event *payments.Event) error {
	obj, err := event.Object()
	if err != nil {
		return err
	}

	payment, err := ps.repo.GetByProviderPaymentID(ctx, obj.ID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			// the event can outrun the local payment row commit; the
			// processor will redeliver
			logger.Log.Warn("webhook: payment not found by payment id", zap.String("payment_id", obj.ID))
			return nil
		}
		return err
	}

	return ps.completeAndFulfill(ctx, event, payment, nil)
}

func (ps *PaymentService) handleSessionCompleted(ctx context.Context, event *payments.Event) error {
	obj, err := event.Object()
	if err != nil {
		return err
	}

	payment, err := ps.repo.GetByProviderSessionID(ctx, obj.ID)
	if err != nil && errors.Is(err, models.ErrDataNotFound) && obj.PaymentIntent != "" {
		// fall back to the embedded payment intent reference
		payment, err = ps.repo.GetByProviderPaymentID(ctx, obj.PaymentIntent)
	}
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			logger.Log.Warn("webhook: payment not found by session id", zap.String("session_id", obj.ID))
			return nil
		}
		return err
	}

	var intentID *string
	if obj.PaymentIntent != "" {
		intentID = &obj.PaymentIntent
	}

	return ps.completeAndFulfill(ctx, event, payment, intentID)
}

func (ps *PaymentService) completeAndFulfill(ctx context.Context, event *payments.Event, payment *models.Payment, intentID *string) error {
	if err := ps.repo.CompletePayment(ctx, payment, intentID, event.Data.Object); err != nil {
		return err
	}

	// fulfillment runs after the durable payment commit; its failure
	// must never roll the payment back
	if err := ps.fulfillment.PrepareShipment(ctx, payment.OrderID); err != nil {
		logger.Log.Error("webhook: fulfillment failed, order stays paid",
			zap.Uint64("order_id", payment.OrderID), zap.Error(err))
	}

	return nil
}
