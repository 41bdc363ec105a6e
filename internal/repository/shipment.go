package repository

import (
	"context"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertShipmentQuery = `
						INSERT INTO shipments (order_id, provider, tracking_number, status, label_url, raw_payload, eta)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id, created_at, updated_at
`
	selectShipmentsByOrderQuery = `
						SELECT id, order_id, provider, tracking_number, status, label_url, raw_payload, eta, created_at, updated_at
						FROM shipments
						WHERE order_id = $1
						ORDER BY id
`
	selectAllShipmentsQuery = `
						SELECT id, order_id, provider, tracking_number, status, label_url, raw_payload, eta, created_at, updated_at
						FROM shipments
						ORDER BY id
`
	updateShipmentStatusQuery = `
						UPDATE shipments
						SET status = $1, raw_payload = $2, updated_at = now()
						WHERE id = $3
`
)

// ShipmentRepository provides access to shipment rows
type ShipmentRepository struct {
	db *postgres.DB
}

// NewShipmentRepository creates new ShipmentRepository instance
func NewShipmentRepository(db *postgres.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// CreateShipment inserts new shipment to database
func (sr *ShipmentRepository) CreateShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	err := sr.db.QueryRow(ctx, insertShipmentQuery,
		shipment.OrderID, shipment.Provider, shipment.TrackingNumber, shipment.Status,
		shipment.LabelURL, shipment.RawPayload, shipment.ETA,
	).Scan(&shipment.ID, &shipment.CreatedAt, &shipment.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return shipment, nil
}

// GetByOrderID returns shipments of order
func (sr *ShipmentRepository) GetByOrderID(ctx context.Context, orderID uint64) ([]models.Shipment, error) {
	return sr.scanMany(ctx, selectShipmentsByOrderQuery, orderID)
}

// ListAll returns all shipments for status synchronization
func (sr *ShipmentRepository) ListAll(ctx context.Context) ([]models.Shipment, error) {
	return sr.scanMany(ctx, selectAllShipmentsQuery)
}

func (sr *ShipmentRepository) scanMany(ctx context.Context, query string, args ...any) ([]models.Shipment, error) {
	rows, err := sr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shipments := []models.Shipment{}

	for rows.Next() {
		sh := models.Shipment{}
		err = rows.Scan(&sh.ID, &sh.OrderID, &sh.Provider, &sh.TrackingNumber, &sh.Status,
			&sh.LabelURL, &sh.RawPayload, &sh.ETA, &sh.CreatedAt, &sh.UpdatedAt)
		if err != nil {
			continue
		}
		shipments = append(shipments, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shipments, nil
}

// UpdateShipmentStatus updates shipment status and raw carrier payload
func (sr *ShipmentRepository) UpdateShipmentStatus(ctx context.Context, shipmentID uint64, status string, raw []byte) error {
	cmd, err := sr.db.Exec(ctx, updateShipmentStatusQuery, status, raw, shipmentID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
