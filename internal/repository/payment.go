package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertPaymentQuery = `
						INSERT INTO payments (order_id, provider, provider_payment_id, provider_session_id, amount, currency, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id, created_at, updated_at
`
	selectPaymentByPaymentIDQuery = `
						SELECT id, order_id, provider, provider_payment_id, provider_session_id, amount, currency, status, raw_payload, created_at, updated_at
						FROM payments
						WHERE provider_payment_id = $1
`
	selectPaymentBySessionIDQuery = `
						SELECT id, order_id, provider, provider_payment_id, provider_session_id, amount, currency, status, raw_payload, created_at, updated_at
						FROM payments
						WHERE provider_session_id = $1
`
	completePaymentQuery = `
						UPDATE payments
						SET status = $1, provider_payment_id = COALESCE($2, provider_payment_id), raw_payload = $3, updated_at = now()
						WHERE id = $4
`
	markOrderPaidQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE id = $2 AND status = $3
`
)

// PaymentRepository provides access to payment rows
type PaymentRepository struct {
	db *postgres.DB
}

// NewPaymentRepository creates new PaymentRepository instance
func NewPaymentRepository(db *postgres.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePayment inserts new payment to database
func (pr *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	err := pr.db.QueryRow(ctx, insertPaymentQuery,
		payment.OrderID, payment.Provider, payment.ProviderPaymentID, payment.ProviderSessionID,
		payment.Amount, payment.Currency, payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if errCode := pr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return payment, nil
}

// GetByProviderPaymentID returns payment by processor payment id
func (pr *PaymentRepository) GetByProviderPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	return pr.scanOne(ctx, selectPaymentByPaymentIDQuery, paymentID)
}

// GetByProviderSessionID returns payment by processor checkout session id
func (pr *PaymentRepository) GetByProviderSessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	return pr.scanOne(ctx, selectPaymentBySessionIDQuery, sessionID)
}

func (pr *PaymentRepository) scanOne(ctx context.Context, query, arg string) (*models.Payment, error) {
	payment := models.Payment{}
	err := pr.db.QueryRow(ctx, query, arg).Scan(
		&payment.ID, &payment.OrderID, &payment.Provider,
		&payment.ProviderPaymentID, &payment.ProviderSessionID,
		&payment.Amount, &payment.Currency, &payment.Status, &payment.RawPayload,
		&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// CompletePayment marks the payment completed, stores the raw processor
// payload and moves the order to paid, all in one transaction. The
// order update is guarded on the current status: re-deliveries of an
// already processed event update the payment row idempotently and
// leave the order alone.
func (pr *PaymentRepository) CompletePayment(ctx context.Context, payment *models.Payment, paymentIntentID *string, raw []byte) error {
	return pr.db.WithinTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, completePaymentQuery,
			models.PaymentStatusCompleted, paymentIntentID, raw, payment.ID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, markOrderPaidQuery,
			models.OrderStatusPaid, payment.OrderID, models.OrderStatusNew)
		return err
	})
}
