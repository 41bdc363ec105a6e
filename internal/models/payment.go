package models

import "time"

// payment status
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// Payment is a single payment attempt against an external processor.
// Created at checkout before the processor call completes, updated by
// the webhook handler only.
type Payment struct {
	ID                uint64
	OrderID           uint64
	Provider          string
	ProviderPaymentID *string
	ProviderSessionID *string
	Amount            float64
	Currency          string
	Status            string
	RawPayload        []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
