package b2bcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coalmart/coalmart/internal/logger"
)

// snapshot body size cap
const maxSnapshotBytes = 2 << 20

// SanctionsResult is the outcome of a sanctions/OSINT screening.
type SanctionsResult struct {
	IsSanctioned bool
	SnapshotPath string
	Raw          []byte
}

// OSINTClient screens a company against sanctions lists and captures
// a snapshot of the claimed company website as supporting evidence.
// With no base URL configured the screening degrades to a no-hit.
type OSINTClient struct {
	client      *http.Client
	baseURL     string
	snapshotDir string
}

// NewOSINTClient creates new OSINTClient instance
func NewOSINTClient(baseURL, snapshotDir string) *OSINTClient {
	return &OSINTClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		snapshotDir: snapshotDir,
	}
}

type sanctionsResponse struct {
	Sanctioned bool `json:"sanctioned"`
}

// CheckSanctions screens a company. The website snapshot is strictly
// best effort: its failure never fails the check.
func (c *OSINTClient) CheckSanctions(ctx context.Context, vatNumber, companyName, website string) (*SanctionsResult, error) {
	result := SanctionsResult{}

	if website != "" {
		path, err := c.captureSnapshot(ctx, website)
		if err != nil {
			logger.Log.Warn("website snapshot failed",
				zap.String("website", website), zap.Error(err))
		} else {
			result.SnapshotPath = path
		}
	}

	if c.baseURL == "" {
		result.Raw, _ = json.Marshal(map[string]any{
			"offline":      true,
			"vat_number":   vatNumber,
			"company_name": companyName,
			"snapshot":     result.SnapshotPath,
		})
		return &result, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/screen", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("vat_number", vatNumber)
	q.Set("company_name", companyName)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osint: unexpected status %d", resp.StatusCode)
	}

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	sResp := sanctionsResponse{}
	if err := json.Unmarshal(raw, &sResp); err != nil {
		return nil, err
	}

	result.IsSanctioned = sResp.Sanctioned
	result.Raw = raw

	return &result, nil
}

// captureSnapshot fetches the website and stores the page under the
// snapshot directory as evidence.
func (c *OSINTClient) captureSnapshot(ctx context.Context, website string) (string, error) {
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("snapshot: unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(c.snapshotDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(c.snapshotDir, uuid.NewString()+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxSnapshotBytes)); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}
