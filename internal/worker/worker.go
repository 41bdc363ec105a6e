package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
)

// StatusSyncer refreshes shipment statuses from the carriers
type StatusSyncer interface {
	SyncStatuses(ctx context.Context) error
}

// Rechecker reruns business verification for all business accounts
type Rechecker interface {
	RecheckAll(ctx context.Context) error
}

// StockWatcher raises alerts for products running low
type StockWatcher interface {
	CheckLowStock(ctx context.Context) error
}

// Reporter sends the daily sales summary to the owner
type Reporter interface {
	SendDailyReport(ctx context.Context) error
}

// Runner is a background worker performing periodic maintenance:
// carrier status sync, low-stock alerting, business re-checks and the
// daily sales report.
type Runner struct {
	shipping StatusSyncer
	b2b      Rechecker
	stock    StockWatcher
	reports  Reporter

	syncInterval    time.Duration
	recheckInterval time.Duration
	reportInterval  time.Duration
}

// New creates new Runner instance
func New(shipping StatusSyncer, b2b Rechecker, stock StockWatcher, reports Reporter) *Runner {
	return &Runner{
		shipping:        shipping,
		b2b:             b2b,
		stock:           stock,
		reports:         reports,
		syncInterval:    5 * time.Minute,
		recheckInterval: 24 * time.Hour,
		reportInterval:  24 * time.Hour,
	}
}

// Run blocks until the context is cancelled
func (r *Runner) Run(ctx context.Context) {
	syncTicker := time.NewTicker(r.syncInterval)
	defer syncTicker.Stop()

	recheckTicker := time.NewTicker(r.recheckInterval)
	defer recheckTicker.Stop()

	reportTicker := time.NewTicker(r.reportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("worker is done")
			return
		case <-syncTicker.C:
			if err := r.shipping.SyncStatuses(ctx); err != nil {
				logger.Log.Error("shipment status sync failed", zap.Error(err))
			}
			if err := r.stock.CheckLowStock(ctx); err != nil {
				logger.Log.Error("low stock check failed", zap.Error(err))
			}
		case <-recheckTicker.C:
			if err := r.b2b.RecheckAll(ctx); err != nil {
				logger.Log.Error("business recheck failed", zap.Error(err))
			}
		case <-reportTicker.C:
			if err := r.reports.SendDailyReport(ctx); err != nil {
				logger.Log.Error("daily report failed", zap.Error(err))
			}
		}
	}
}
