package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSalesReader struct {
	count int
	total float64
	err   error
	since time.Time
}

func (f *fakeSalesReader) GetSalesSummary(_ context.Context, since time.Time) (int, float64, error) {
	f.since = since
	return f.count, f.total, f.err
}

func TestSendDailyReport(t *testing.T) {
	orders := &fakeSalesReader{count: 3, total: 77.50}
	alerter := &fakeAlerter{}
	svc := NewReportService(orders, alerter)

	err := svc.SendDailyReport(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"daily_report"}, alerter.raised)
	payload := alerter.payloads[0]
	assert.Equal(t, 1, payload["period_days"])
	assert.Equal(t, 3, payload["orders_count"])
	assert.Equal(t, 77.50, payload["total_amount"])

	cutoff := time.Now().UTC().AddDate(0, 0, -1)
	assert.WithinDuration(t, cutoff, orders.since, time.Minute)
}

func TestSendSalesSummaryQueryError(t *testing.T) {
	orders := &fakeSalesReader{err: errors.New("connection lost")}
	alerter := &fakeAlerter{}
	svc := NewReportService(orders, alerter)

	err := svc.SendSalesSummary(context.Background(), 7)

	require.Error(t, err)
	assert.Empty(t, alerter.raised, "a failed query must not produce a report")
}
