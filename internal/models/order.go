package models

import "time"

// order status
const (
	OrderStatusNew        = "new"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// fulfillment step, sub-state of a processing order.
// Lets a crashed fulfillment run resume deterministically.
const (
	FulfillmentStepNone     = ""
	FulfillmentStepReserved = "reserved"
	FulfillmentStepTask     = "task_created"
	FulfillmentStepShipment = "shipment_requested"
)

// Order is order entity
type Order struct {
	ID              uint64
	UserID          uint64
	Status          string
	FulfillmentStep string
	TotalAmount     float64
	Currency        string
	IsB2B           bool
	ShippingAddress []byte
	BillingAddress  []byte
	PaymentIntentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is order line entity. Unit price and currency are
// snapshotted at order time and never recomputed from the live
// product price. QuantityReserved records what fulfillment actually
// held against stock so cancellation can release exactly that amount.
type OrderItem struct {
	ID               uint64
	OrderID          uint64
	ProductID        uint64
	Quantity         int
	QuantityReserved int
	UnitPrice        float64
	Currency         string
}

// legal order status transitions
var orderTransitions = map[string][]string{
	OrderStatusNew:        {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusCompleted},
}

// CanTransit reports whether an order may move from one status to the next.
func CanTransit(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transit moves the order to the next status, rejecting illegal edges.
// All status writes must go through this check rather than setting the
// field directly.
func (o *Order) Transit(to string) error {
	if !CanTransit(o.Status, to) {
		return ErrInvalidTransition
	}
	o.Status = to
	return nil
}
