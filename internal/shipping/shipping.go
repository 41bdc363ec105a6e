// Package shipping holds the pluggable carrier clients.
package shipping

import (
	"context"
	"fmt"
)

// ShipmentData is the provider-side result of creating a shipment.
type ShipmentData struct {
	Provider       string
	TrackingNumber string
	LabelURL       *string
	Raw            []byte
}

// TrackingEvent is one entry of a parcel's history.
type TrackingEvent struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// StatusData is the provider-side tracking state of a shipment.
type StatusData struct {
	TrackingNumber string
	Status         string
	Events         []TrackingEvent
	Raw            []byte
}

// Carrier is the abstraction over concrete shipping-provider clients.
type Carrier interface {
	CreateShipment(ctx context.Context, orderID uint64) (*ShipmentData, error)
	GetShipmentStatus(ctx context.Context, trackingNumber string) (*StatusData, error)
}

// Registry selects a carrier by provider name.
type Registry struct {
	carriers map[string]Carrier
	def      string
}

// NewRegistry creates a carrier registry with a default provider.
func NewRegistry(def string) *Registry {
	return &Registry{
		carriers: make(map[string]Carrier),
		def:      def,
	}
}

// Register adds a carrier under its provider name.
func (r *Registry) Register(name string, c Carrier) {
	r.carriers[name] = c
}

// Get returns the carrier for a provider name, or the default carrier
// when name is empty.
func (r *Registry) Get(name string) (Carrier, error) {
	if name == "" {
		name = r.def
	}

	c, ok := r.carriers[name]
	if !ok {
		return nil, fmt.Errorf("unknown shipping provider %q", name)
	}

	return c, nil
}

// Default returns the configured default provider name.
func (r *Registry) Default() string {
	return r.def
}
