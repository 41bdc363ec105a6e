// Package payments integrates with a Stripe-style payment processor:
// checkout session creation and webhook event verification/parsing.
package payments

import (
	"encoding/json"

	"github.com/coalmart/coalmart/internal/models"
)

// recognized webhook event kinds
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventSessionCompleted = "checkout.session.completed"
)

// Event is a processor webhook event envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// EventObject is the inner object of the events this system acts on.
// For payment_intent.succeeded the ID is the payment-intent id; for
// checkout.session.completed it is the session id and PaymentIntent
// carries the embedded intent reference.
type EventObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// ParseEvent decodes a raw webhook body.
func ParseEvent(body []byte) (*Event, error) {
	event := Event{}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, models.ErrInvalidPayload
	}
	if event.Type == "" {
		return nil, models.ErrInvalidPayload
	}

	return &event, nil
}

// Object decodes the event's inner data object.
func (e *Event) Object() (*EventObject, error) {
	obj := EventObject{}
	if err := json.Unmarshal(e.Data.Object, &obj); err != nil {
		return nil, models.ErrInvalidPayload
	}

	return &obj, nil
}
