package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
)

// ShipmentRepository is interface for interacting with shipment rows
type ShipmentRepository interface {
	// ListAll returns all shipments
	ListAll(ctx context.Context) ([]models.Shipment, error)
	// UpdateShipmentStatus updates status and raw carrier payload
	UpdateShipmentStatus(ctx context.Context, shipmentID uint64, status string, raw []byte) error
}

// ShippingService keeps local shipment rows in sync with the carriers.
type ShippingService struct {
	repo     ShipmentRepository
	carriers CarrierRegistry
}

// NewShippingService creates new ShippingService instance
func NewShippingService(repo ShipmentRepository, carriers CarrierRegistry) *ShippingService {
	return &ShippingService{
		repo:     repo,
		carriers: carriers,
	}
}

// SyncStatuses pulls the tracking state of every shipment from its
// carrier. Best effort: a failing carrier or row is logged and the
// sweep continues.
func (ss *ShippingService) SyncStatuses(ctx context.Context) error {
	shipments, err := ss.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, sh := range shipments {
		if sh.TrackingNumber == "" {
			continue
		}

		carrier, err := ss.carriers.Get(sh.Provider)
		if err != nil {
			logger.Log.Warn("shipping sync: unknown provider",
				zap.Uint64("shipment_id", sh.ID), zap.String("provider", sh.Provider))
			continue
		}

		status, err := carrier.GetShipmentStatus(ctx, sh.TrackingNumber)
		if err != nil {
			logger.Log.Error("shipping sync: status pull failed",
				zap.Uint64("shipment_id", sh.ID),
				zap.String("tracking_number", sh.TrackingNumber),
				zap.Error(err))
			continue
		}

		if err := ss.repo.UpdateShipmentStatus(ctx, sh.ID, status.Status, status.Raw); err != nil {
			logger.Log.Error("shipping sync: update failed",
				zap.Uint64("shipment_id", sh.ID), zap.Error(err))
		}
	}

	return nil
}
