package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coalmart/coalmart/internal/middleware"
	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/payments"
	"github.com/coalmart/coalmart/internal/service"
)

// CheckoutService creates orders and drives their lifecycle
type CheckoutService interface {
	Checkout(ctx context.Context, user *models.User, lines []service.CheckoutLine, currency string, shippingAddr, billingAddr []byte, successURL, cancelURL string) (*models.Order, *payments.CheckoutSession, error)
	Cancel(ctx context.Context, orderID uint64) error
	ListUserOrders(ctx context.Context, userID uint64) ([]models.Order, error)
}

// OrderUserGetter loads the authenticated user for checkout pricing
type OrderUserGetter interface {
	GetUser(ctx context.Context, userID uint64) (*models.User, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc   CheckoutService
	users OrderUserGetter
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc CheckoutService, users OrderUserGetter) *OrderHandler {
	return &OrderHandler{svc: svc, users: users}
}

type checkoutRequest struct {
	Items []struct {
		ProductID uint64 `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	Currency        string          `json:"currency"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	BillingAddress  json.RawMessage `json:"billing_address"`
	SuccessURL      string          `json:"success_url"`
	CancelURL       string          `json:"cancel_url"`
}

type orderResponse struct {
	ID              uint64    `json:"id"`
	Status          string    `json:"status"`
	FulfillmentStep string    `json:"fulfillment_step,omitempty"`
	TotalAmount     float64   `json:"total_amount"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// Checkout creates an order with snapshotted prices and a hosted
// checkout session at the payment processor.
func (oh *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if len(req.Items) == 0 {
			http.Error(w, "order has no items", http.StatusBadRequest)
			return
		}

		user, err := oh.users.GetUser(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		lines := make([]service.CheckoutLine, 0, len(req.Items))
		for _, it := range req.Items {
			if it.Quantity <= 0 {
				http.Error(w, "quantity must be positive", http.StatusBadRequest)
				return
			}
			lines = append(lines, service.CheckoutLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		order, session, err := oh.svc.Checkout(r.Context(), user, lines, req.Currency, req.ShippingAddress, req.BillingAddress, req.SuccessURL, req.CancelURL)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "unknown product", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"order":        orderToResponse(order),
			"checkout_url": session.URL,
		})
	}
}

// ListOrders returns the authenticated user's orders
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListUserOrders(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, orderToResponse(&orders[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// CancelOrder cancels the order and releases any held stock. Only the
// order owner or staff may cancel.
func (oh *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := strconv.ParseUint(chi.URLParam(r, "orderID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		orders, err := oh.svc.ListUserOrders(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		owned := false
		for i := range orders {
			if orders[i].ID == orderID {
				owned = true
				break
			}
		}
		if !owned && payload.Role != models.RoleStaff && payload.Role != models.RoleAdmin {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		if err := oh.svc.Cancel(r.Context(), orderID); err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "order can no longer be cancelled", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}

func orderToResponse(order *models.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		Status:          order.Status,
		FulfillmentStep: order.FulfillmentStep,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
		CreatedAt:       order.CreatedAt,
	}
}
