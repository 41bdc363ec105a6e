package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coalmart/coalmart/internal/models"
)

// VerificationService reruns business verification for a user
type VerificationService interface {
	RunChecks(ctx context.Context, user *models.User) (*models.B2BCheckResult, error)
}

// B2BHandler represents HTTP handler for business verification requests
type B2BHandler struct {
	svc   VerificationService
	users OrderUserGetter
}

// NewB2BHandler creates new B2BHandler instance
func NewB2BHandler(svc VerificationService, users OrderUserGetter) *B2BHandler {
	return &B2BHandler{svc: svc, users: users}
}

// Recheck reruns the full verification pipeline for one user
func (bh *B2BHandler) Recheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		user, err := bh.users.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !user.IsB2B {
			http.Error(w, "user is not a business account", http.StatusBadRequest)
			return
		}

		result, err := bh.svc.RunChecks(r.Context(), user)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id":          result.UserID,
			"score":            result.Score,
			"is_valid_vat":     result.IsValidVAT,
			"is_company_found": result.IsCompanyFound,
			"is_sanctioned":    result.IsSanctioned,
		})
	}
}
