package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
)

// SalesReader is interface for aggregating order rows
type SalesReader interface {
	// GetSalesSummary returns orders count and total amount since the moment
	GetSalesSummary(ctx context.Context, since time.Time) (int, float64, error)
}

// ReportService builds the periodic sales summary for the shop owner.
type ReportService struct {
	orders  SalesReader
	alerter Alerter
}

// NewReportService creates new ReportService instance
func NewReportService(orders SalesReader, alerter Alerter) *ReportService {
	return &ReportService{
		orders:  orders,
		alerter: alerter,
	}
}

// SendDailyReport summarizes the last day of orders. Delivery is
// mocked for now: the summary lands on the owner alert channel and in
// the log until a real bot integration exists.
func (rs *ReportService) SendDailyReport(ctx context.Context) error {
	return rs.SendSalesSummary(ctx, 1)
}

// SendSalesSummary reports order count and revenue over the last N days.
func (rs *ReportService) SendSalesSummary(ctx context.Context, days int) error {
	since := time.Now().UTC().AddDate(0, 0, -days)
	count, total, err := rs.orders.GetSalesSummary(ctx, since)
	if err != nil {
		return err
	}

	logger.Log.Info("sales report",
		zap.Int("period_days", days),
		zap.Int("orders_count", count),
		zap.Float64("total_amount", total))

	rs.alerter.Raise(ctx, "daily_report", map[string]any{
		"period_days":  days,
		"orders_count": count,
		"total_amount": total,
	})

	return nil
}
