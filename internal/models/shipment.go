package models

import "time"

// Shipment is a carrier-side parcel for an order.
type Shipment struct {
	ID             uint64
	OrderID        uint64
	Provider       string
	TrackingNumber string
	Status         string
	LabelURL       *string
	RawPayload     []byte
	ETA            *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
