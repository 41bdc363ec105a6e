package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransit(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "new_to_paid", from: OrderStatusNew, to: OrderStatusPaid, want: true},
		{name: "paid_to_processing", from: OrderStatusPaid, to: OrderStatusProcessing, want: true},
		{name: "processing_to_shipped", from: OrderStatusProcessing, to: OrderStatusShipped, want: true},
		{name: "shipped_to_completed", from: OrderStatusShipped, to: OrderStatusCompleted, want: true},
		{name: "new_to_cancelled", from: OrderStatusNew, to: OrderStatusCancelled, want: true},
		{name: "paid_to_cancelled", from: OrderStatusPaid, to: OrderStatusCancelled, want: true},
		{name: "processing_to_cancelled", from: OrderStatusProcessing, to: OrderStatusCancelled, want: true},
		{name: "shipped_to_cancelled", from: OrderStatusShipped, to: OrderStatusCancelled, want: false},
		{name: "new_to_shipped_skips_payment", from: OrderStatusNew, to: OrderStatusShipped, want: false},
		{name: "new_to_processing_skips_payment", from: OrderStatusNew, to: OrderStatusProcessing, want: false},
		{name: "completed_is_terminal", from: OrderStatusCompleted, to: OrderStatusCancelled, want: false},
		{name: "cancelled_is_terminal", from: OrderStatusCancelled, to: OrderStatusNew, want: false},
		{name: "no_backwards_move", from: OrderStatusShipped, to: OrderStatusProcessing, want: false},
		{name: "unknown_status", from: "lost", to: OrderStatusPaid, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransit(tt.from, tt.to))
		})
	}
}

func TestOrderTransit(t *testing.T) {
	order := Order{Status: OrderStatusNew}

	require.NoError(t, order.Transit(OrderStatusPaid))
	assert.Equal(t, OrderStatusPaid, order.Status)

	err := order.Transit(OrderStatusCompleted)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusPaid, order.Status)
}

func TestCanTransitTask(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pending_to_assembling", from: TaskStatusPending, to: TaskStatusAssembling, want: true},
		{name: "assembling_to_packing", from: TaskStatusAssembling, to: TaskStatusPacking, want: true},
		{name: "packing_to_shipped", from: TaskStatusPacking, to: TaskStatusShipped, want: true},
		{name: "pending_to_cancelled", from: TaskStatusPending, to: TaskStatusCancelled, want: true},
		{name: "pending_skips_assembling", from: TaskStatusPending, to: TaskStatusPacking, want: false},
		{name: "shipped_is_terminal", from: TaskStatusShipped, to: TaskStatusCancelled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitTask(tt.from, tt.to))
		})
	}
}

func TestStockItemAvailable(t *testing.T) {
	assert.Equal(t, 7, (&StockItem{QuantityTotal: 10, QuantityReserved: 3}).Available())
	assert.Equal(t, 0, (&StockItem{QuantityTotal: 3, QuantityReserved: 3}).Available())
	// reservation accounting can briefly exceed on-hand stock after a
	// manual adjustment; availability never goes negative
	assert.Equal(t, 0, (&StockItem{QuantityTotal: 2, QuantityReserved: 5}).Available())
}
