package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of a /scan response is decoded.
const maxResponseBytes = 4 << 20

// Client requests scans from a remote netsentry server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the server at baseURL. A zero timeout
// leaves requests unbounded; callers cancel through the context instead.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Scan issues GET /scan and decodes the payload. The backend answers error
// payloads with non-2xx codes, so the body is decoded whatever the status;
// only transport and decoding failures are returned as errors.
func (c *Client) Scan(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scan", nil)
	if err != nil {
		return nil, fmt.Errorf("building scan request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting scan: %w", err)
	}
	defer resp.Body.Close()

	var res Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding scan response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &res, nil
}
