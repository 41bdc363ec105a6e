package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coalmart/coalmart/internal/models"
)

// StockAdminService adjusts and inspects warehouse stock
type StockAdminService interface {
	GetStock(ctx context.Context, productID uint64) (*models.StockItem, error)
	Adjust(ctx context.Context, productID uint64, delta int) error
}

// StockHandler represents HTTP handler for stock administration
type StockHandler struct {
	svc StockAdminService
}

// NewStockHandler creates new StockHandler instance
func NewStockHandler(svc StockAdminService) *StockHandler {
	return &StockHandler{svc: svc}
}

type stockResponse struct {
	ProductID        uint64 `json:"product_id"`
	QuantityTotal    int    `json:"quantity_total"`
	QuantityReserved int    `json:"quantity_reserved"`
	Available        int    `json:"available"`
	Location         string `json:"location,omitempty"`
}

// GetStock returns current stock for a product
func (sh *StockHandler) GetStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseUint(chi.URLParam(r, "productID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		item, err := sh.svc.GetStock(r.Context(), productID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, stockResponse{
			ProductID:        item.ProductID,
			QuantityTotal:    item.QuantityTotal,
			QuantityReserved: item.QuantityReserved,
			Available:        item.Available(),
			Location:         item.Location,
		})
	}
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

// AdjustStock applies a manual correction to on-hand stock
func (sh *StockHandler) AdjustStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseUint(chi.URLParam(r, "productID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req adjustStockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := sh.svc.Adjust(r.Context(), productID, req.Delta); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
