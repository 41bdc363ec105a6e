package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coalmart/coalmart/internal/logger"
	"go.uber.org/zap"
)

// DHLClient talks to the DHL shipment API.
type DHLClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewDHLClient creates new DHLClient instance
func NewDHLClient(baseURL, apiKey string) *DHLClient {
	return &DHLClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type dhlShipmentRequest struct {
	OrderReference string `json:"orderReference"`
}

type dhlShipmentResponse struct {
	TrackingNumber string `json:"trackingNumber"`
	LabelURL       string `json:"labelUrl"`
}

// CreateShipment registers a parcel with DHL and returns the tracking data.
func (c *DHLClient) CreateShipment(ctx context.Context, orderID uint64) (*ShipmentData, error) {
	if c.apiKey == "" {
		// sandbox mode without credentials, used in dev environments
		logger.Log.Warn("dhl api key is not set, returning sandbox shipment", zap.Uint64("order_id", orderID))
		raw, _ := json.Marshal(map[string]any{"mock": true, "reason": "no_api_key"})
		return &ShipmentData{
			Provider:       "dhl",
			TrackingNumber: fmt.Sprintf("DHL-TEST-%d", orderID),
			Raw:            raw,
		}, nil
	}

	u, err := url.JoinPath(c.baseURL, "shipments")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(dhlShipmentRequest{OrderReference: fmt.Sprintf("order-%d", orderID)})
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, u, body)
	if err != nil {
		return nil, err
	}

	shResp := dhlShipmentResponse{}
	if err := json.Unmarshal(raw, &shResp); err != nil {
		return nil, err
	}

	data := &ShipmentData{
		Provider:       "dhl",
		TrackingNumber: shResp.TrackingNumber,
		Raw:            raw,
	}
	if shResp.LabelURL != "" {
		data.LabelURL = &shResp.LabelURL
	}

	return data, nil
}

type dhlStatusResponse struct {
	Status string          `json:"status"`
	Events []TrackingEvent `json:"events"`
}

// GetShipmentStatus returns the tracking state of a parcel.
func (c *DHLClient) GetShipmentStatus(ctx context.Context, trackingNumber string) (*StatusData, error) {
	u, err := url.JoinPath(c.baseURL, "track", trackingNumber)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dhl tracking: unexpected status %d", resp.StatusCode)
	}

	stResp := dhlStatusResponse{}
	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &stResp); err != nil {
		return nil, err
	}

	return &StatusData{
		TrackingNumber: trackingNumber,
		Status:         stResp.Status,
		Events:         stResp.Events,
		Raw:            raw,
	}, nil
}

func (c *DHLClient) post(ctx context.Context, u string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("dhl: unexpected status %d", resp.StatusCode)
	}

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	return raw, nil
}
