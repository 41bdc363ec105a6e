package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/coalmart/coalmart/internal/models"
)

// WebhookService processes raw payment processor events
type WebhookService interface {
	HandleWebhook(ctx context.Context, body []byte, sigHeader string) error
}

// WebhookHandler represents HTTP handler for payment processor callbacks
type WebhookHandler struct {
	svc WebhookService
}

// NewWebhookHandler creates new WebhookHandler instance
func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// HandleEvent receives a processor event. The response is always JSON:
// the processor retries anything that is not a 2xx, so handler errors
// that must not be retried are answered with 200.
func (wh *WebhookHandler) HandleEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
			return
		}
		defer r.Body.Close()

		err = wh.svc.HandleWebhook(r.Context(), body, r.Header.Get("Stripe-Signature"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidPayload):
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
			case errors.Is(err, models.ErrInvalidSignature):
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
			default:
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
