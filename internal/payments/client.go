package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coalmart/coalmart/internal/models"
)

const defaultBaseURL = "https://api.stripe.com"

// CheckoutSession is the processor-side session created for an order.
type CheckoutSession struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	URL           string `json:"url"`
}

// Client talks to the payment processor API.
type Client struct {
	client    *http.Client
	baseURL   string
	secretKey string
}

// NewClient creates new payment processor client
func NewClient(secretKey string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   defaultBaseURL,
		secretKey: secretKey,
	}
}

// WithBaseURL overrides the API host, used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// CreateCheckoutSession creates a hosted checkout session for the
// whole order total as a single line.
func (c *Client) CreateCheckoutSession(ctx context.Context, order *models.Order, successURL, cancelURL string) (*CheckoutSession, error) {
	u, err := url.JoinPath(c.baseURL, "v1", "checkout", "sessions")
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("line_items[0][price_data][currency]", strings.ToLower(order.Currency))
	form.Set("line_items[0][price_data][product_data][name]", fmt.Sprintf("Order #%d", order.ID))
	// processor expects the amount in minor units; round rather than
	// truncate, 19.99*100 is 1998.999... in float64
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprintf("%d", int64(math.Round(order.TotalAmount*100))))
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[order_id]", fmt.Sprintf("%d", order.ID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment processor: unexpected status %d", resp.StatusCode)
	}

	session := CheckoutSession{}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}
