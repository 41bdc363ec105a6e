package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coalmart/coalmart/internal/middleware"
	"github.com/coalmart/coalmart/internal/models"
)

// TaskService drives warehouse picking tasks
type TaskService interface {
	AdvanceTask(ctx context.Context, taskID uint64, to string) error
	AssignTask(ctx context.Context, taskID, userID uint64) error
	ListPendingTasks(ctx context.Context) ([]models.WarehouseTask, error)
}

// WarehouseHandler represents HTTP handler for warehouse task requests
type WarehouseHandler struct {
	svc TaskService
}

// NewWarehouseHandler creates new WarehouseHandler instance
func NewWarehouseHandler(svc TaskService) *WarehouseHandler {
	return &WarehouseHandler{svc: svc}
}

type taskResponse struct {
	ID         uint64  `json:"id"`
	OrderID    uint64  `json:"order_id"`
	Status     string  `json:"status"`
	AssignedTo *uint64 `json:"assigned_to,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// ListPending returns tasks not yet completed
func (wh *WarehouseHandler) ListPending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := wh.svc.ListPendingTasks(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(tasks) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		resp := make([]taskResponse, 0, len(tasks))
		for i := range tasks {
			t := &tasks[i]
			resp = append(resp, taskResponse{
				ID:         t.ID,
				OrderID:    t.OrderID,
				Status:     t.Status,
				AssignedTo: t.AssignedTo,
				Notes:      t.Notes,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type advanceTaskRequest struct {
	To string `json:"to"`
}

// AdvanceTask moves a task to the requested status
func (wh *WarehouseHandler) AdvanceTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := strconv.ParseUint(chi.URLParam(r, "taskID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}

		var req advanceTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := wh.svc.AdvanceTask(r.Context(), taskID, req.To); err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "invalid task transition", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// ClaimTask assigns the task to the authenticated staff member
func (wh *WarehouseHandler) ClaimTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		taskID, err := strconv.ParseUint(chi.URLParam(r, "taskID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}

		if err := wh.svc.AssignTask(r.Context(), taskID, payload.UserID); err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
