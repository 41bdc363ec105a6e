package b2bcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RegistryResult is the outcome of a trade-registry presence check.
type RegistryResult struct {
	IsFound bool
	Raw     []byte
}

// RegistryClient checks company presence in national trade registers.
// With no base URL configured it degrades to an offline heuristic:
// present when a company name or registry id was supplied at all.
type RegistryClient struct {
	client  *http.Client
	baseURL string
}

// NewRegistryClient creates new RegistryClient instance
func NewRegistryClient(baseURL string) *RegistryClient {
	return &RegistryClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

type registryResponse struct {
	Found bool `json:"found"`
}

// CheckCompany looks a company up by name and/or registry id.
func (c *RegistryClient) CheckCompany(ctx context.Context, companyName, registryID, countryCode string) (*RegistryResult, error) {
	if c.baseURL == "" {
		found := companyName != "" || registryID != ""
		raw, _ := json.Marshal(map[string]any{
			"offline":      true,
			"company_name": companyName,
			"registry_id":  registryID,
			"country_code": countryCode,
		})
		return &RegistryResult{IsFound: found, Raw: raw}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("name", companyName)
	q.Set("registry_id", registryID)
	q.Set("country", countryCode)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry: unexpected status %d", resp.StatusCode)
	}

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	rResp := registryResponse{}
	if err := json.Unmarshal(raw, &rResp); err != nil {
		return nil, err
	}

	return &RegistryResult{IsFound: rResp.Found, Raw: raw}, nil
}
