package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
	"github.com/coalmart/coalmart/internal/models"
)

// AlertRepository is interface for interacting with alert rows
type AlertRepository interface {
	// CreateAlert inserts new unsent alert
	CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	// ListUnsent returns alerts pending delivery
	ListUnsent(ctx context.Context) ([]models.Alert, error)
	// MarkSent marks alert as delivered
	MarkSent(ctx context.Context, alertID uint64) error
}

// AlertService records administrative alerts for later delivery.
type AlertService struct {
	repo    AlertRepository
	channel string
	target  string
}

// NewAlertService creates new AlertService instance
func NewAlertService(repo AlertRepository, channel, target string) *AlertService {
	return &AlertService{
		repo:    repo,
		channel: channel,
		target:  target,
	}
}

// Raise persists an alert. Failures are logged and swallowed: the
// operation that triggered the alert must always complete regardless.
func (as *AlertService) Raise(ctx context.Context, alertType string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("alert: payload marshal failed", zap.String("type", alertType), zap.Error(err))
		return
	}

	alert := models.Alert{
		Type:    alertType,
		Channel: as.channel,
		Target:  as.target,
		Payload: raw,
	}

	if _, err := as.repo.CreateAlert(ctx, &alert); err != nil {
		logger.Log.Error("alert: create failed", zap.String("type", alertType), zap.Error(err))
	}
}

// ListUnsent returns alerts pending delivery
func (as *AlertService) ListUnsent(ctx context.Context) ([]models.Alert, error) {
	return as.repo.ListUnsent(ctx)
}

// MarkSent marks alert as delivered
func (as *AlertService) MarkSent(ctx context.Context, alertID uint64) error {
	return as.repo.MarkSent(ctx, alertID)
}
