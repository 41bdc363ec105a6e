package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coalmart/coalmart/internal/cache"
)

// DPD tokens are valid until the next morning; cache for a day.
const dpdTokenTTL = 24 * time.Hour

const dpdTokenCacheKey = "dpd:auth_token"

// DPDCredentials are the DPD API login data.
type DPDCredentials struct {
	DelisID         string
	Password        string
	MessageLanguage string
}

// DPDClient talks to the DPD REST API. The auth token is kept in an
// injected cache so several client instances (or app instances, with a
// redis cache) share one login.
type DPDClient struct {
	client *http.Client
	base   string
	creds  DPDCredentials
	tokens cache.Cache
}

// NewDPDClient creates new DPDClient instance
func NewDPDClient(baseURL string, creds DPDCredentials, tokens cache.Cache) *DPDClient {
	if creds.MessageLanguage == "" {
		creds.MessageLanguage = "de_DE"
	}
	return &DPDClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		base:   baseURL,
		creds:  creds,
		tokens: tokens,
	}
}

type dpdAuthRequest struct {
	DelisID         string `json:"delisId"`
	Password        string `json:"password"`
	MessageLanguage string `json:"messageLanguage"`
}

type dpdAuthResponse struct {
	Token string `json:"token"`
}

func (c *DPDClient) authToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(ctx, dpdTokenCacheKey); ok {
		return token, nil
	}

	u, err := url.JoinPath(c.base, "services", "LoginService", "V2_0", "getAuth")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(dpdAuthRequest{
		DelisID:         c.creds.DelisID,
		Password:        c.creds.Password,
		MessageLanguage: c.creds.MessageLanguage,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dpd auth: unexpected status %d", resp.StatusCode)
	}

	authResp := dpdAuthResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", err
	}

	if authResp.Token == "" {
		return "", errors.New("dpd auth: empty token")
	}

	_ = c.tokens.Set(ctx, dpdTokenCacheKey, authResp.Token, dpdTokenTTL)

	return authResp.Token, nil
}

// CreateShipment registers a parcel with DPD and returns the tracking data.
func (c *DPDClient) CreateShipment(ctx context.Context, orderID uint64) (*ShipmentData, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.JoinPath(c.base, "restservices", "ShipmentService", "V4_4", "createShipment")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"orderReference": fmt.Sprintf("order-%d", orderID)})
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, u, token, body)
	if err != nil {
		return nil, err
	}

	shResp := struct {
		ParcelLabelNumber string `json:"parcelLabelNumber"`
		LabelURL          string `json:"labelUrl"`
	}{}
	if err := json.Unmarshal(raw, &shResp); err != nil {
		return nil, err
	}

	data := &ShipmentData{
		Provider:       "dpd",
		TrackingNumber: shResp.ParcelLabelNumber,
		Raw:            raw,
	}
	if shResp.LabelURL != "" {
		data.LabelURL = &shResp.LabelURL
	}

	return data, nil
}

// GetShipmentStatus returns the tracking state of a parcel.
func (c *DPDClient) GetShipmentStatus(ctx context.Context, trackingNumber string) (*StatusData, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.JoinPath(c.base, "restservices", "ShipmentService", "V4_4", "getTrackingData")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"parcelLabelNumber": trackingNumber})
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, u, token, body)
	if err != nil {
		return nil, err
	}

	stResp := struct {
		Status string          `json:"status"`
		Events []TrackingEvent `json:"events"`
	}{}
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

func (c *DPDClient) post(ctx context.Context, u, token string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dpd: unexpected status %d", resp.StatusCode)
	}

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	return raw, nil
}
