package repository

import (
	"context"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertAlertQuery = `
						INSERT INTO alerts (type, channel, target, payload)
						VALUES ($1, $2, $3, $4)
						RETURNING id, created_at
`
	selectUnsentAlertsQuery = `
						SELECT id, type, channel, target, payload, is_sent, created_at, sent_at
						FROM alerts
						WHERE is_sent = FALSE
						ORDER BY created_at
`
	markAlertSentQuery = `
						UPDATE alerts
						SET is_sent = TRUE, sent_at = now()
						WHERE id = $1
`
)

// AlertRepository provides access to alert rows
type AlertRepository struct {
	db *postgres.DB
}

// NewAlertRepository creates new AlertRepository instance
func NewAlertRepository(db *postgres.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// CreateAlert inserts new unsent alert to database
func (ar *AlertRepository) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	err := ar.db.QueryRow(ctx, insertAlertQuery,
		alert.Type, alert.Channel, alert.Target, alert.Payload,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return nil, err
	}

	return alert, nil
}

// ListUnsent returns alerts pending delivery
func (ar *AlertRepository) ListUnsent(ctx context.Context) ([]models.Alert, error) {
	rows, err := ar.db.Query(ctx, selectUnsentAlertsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.Alert{}

	for rows.Next() {
		alert := models.Alert{}
		err = rows.Scan(&alert.ID, &alert.Type, &alert.Channel, &alert.Target,
			&alert.Payload, &alert.IsSent, &alert.CreatedAt, &alert.SentAt)
		if err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}

// MarkSent marks alert as delivered
func (ar *AlertRepository) MarkSent(ctx context.Context, alertID uint64) error {
	cmd, err := ar.db.Exec(ctx, markAlertSentQuery, alertID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
