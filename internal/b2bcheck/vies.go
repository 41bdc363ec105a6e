// Package b2bcheck holds the external verification clients used by the
// B2B pipeline: VAT validation, trade-registry lookup and sanctions
// screening.
package b2bcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultVIESBaseURL = "https://ec.europa.eu/taxation_customs/vies/rest-api"

// VATResult is the outcome of a VAT validity check.
type VATResult struct {
	IsValid     bool
	CompanyName string
	Address     string
	Raw         []byte
}

// VIESClient validates VAT numbers against the EU VIES service.
type VIESClient struct {
	client  *http.Client
	baseURL string
}

// NewVIESClient creates new VIESClient instance
func NewVIESClient() *VIESClient {
	return &VIESClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultVIESBaseURL,
	}
}

// WithBaseURL overrides the API host, used in tests.
func (c *VIESClient) WithBaseURL(base string) *VIESClient {
	c.baseURL = base
	return c
}

type viesRequest struct {
	CountryCode string `json:"countryCode"`
	VATNumber   string `json:"vatNumber"`
}

type viesResponse struct {
	Valid   bool   `json:"valid"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CheckVAT validates a VAT number for a country. An empty VAT number
// is an immediate negative without a remote call.
func (c *VIESClient) CheckVAT(ctx context.Context, vatNumber, countryCode string) (*VATResult, error) {
	if vatNumber == "" {
		raw, _ := json.Marshal(map[string]any{"skipped": "empty_vat_number"})
		return &VATResult{Raw: raw}, nil
	}

	u, err := url.JoinPath(c.baseURL, "check-vat-number")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(viesRequest{CountryCode: countryCode, VATNumber: vatNumber})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vies: unexpected status %d", resp.StatusCode)
	}

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	vResp := viesResponse{}
	if err := json.Unmarshal(raw, &vResp); err != nil {
		return nil, err
	}

	return &VATResult{
		IsValid:     vResp.Valid,
		CompanyName: vResp.Name,
		Address:     vResp.Address,
		Raw:         raw,
	}, nil
}
