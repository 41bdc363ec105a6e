package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalmart/coalmart/internal/models"
)

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_1", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		// 129.90 EUR in minor units
		assert.Equal(t, "12990", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "42", r.PostForm.Get("metadata[order_id]"))

		json.NewEncoder(w).Encode(map[string]string{
			"id":             "cs_test_1",
			"payment_intent": "pi_test_1",
			"url":            "https://checkout.example/cs_test_1",
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test_1").WithBaseURL(srv.URL)
	order := &models.Order{ID: 42, TotalAmount: 129.90, Currency: "EUR"}

	session, err := c.CreateCheckoutSession(context.Background(), order, "https://shop/ok", "https://shop/cancel")

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "pi_test_1", session.PaymentIntent)
	assert.Equal(t, "https://checkout.example/cs_test_1", session.URL)
}

func TestCreateCheckoutSessionMinorUnits(t *testing.T) {
	// amounts whose float64 representation sits just below the exact
	// cent value must not lose a cent to truncation
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{name: "exact", amount: 100.00, want: "10000"},
		{name: "just_below_cent", amount: 19.99, want: "1999"},
		{name: "repeating_fraction", amount: 8.90, want: "890"},
		{name: "summed_lines", amount: 2*8.90 + 5*3.20, want: "3380"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				got = r.PostForm.Get("line_items[0][price_data][unit_amount]")
				json.NewEncoder(w).Encode(map[string]string{"id": "cs_1"})
			}))
			defer srv.Close()

			c := NewClient("sk_test_1").WithBaseURL(srv.URL)
			order := &models.Order{ID: 1, TotalAmount: tt.amount, Currency: "EUR"}

			_, err := c.CreateCheckoutSession(context.Background(), order, "", "")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateCheckoutSessionProcessorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewClient("sk_test_1").WithBaseURL(srv.URL)

	_, err := c.CreateCheckoutSession(context.Background(), &models.Order{ID: 1, Currency: "EUR"}, "", "")
	assert.Error(t, err)
}
