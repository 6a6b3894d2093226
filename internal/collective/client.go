// Package collective implements the cross-user pattern exchange: an HTTP
// client used by the engine and the backend service it talks to. An
// unreachable backend is a normal mode — the engine degrades to local-only
// pattern storage, never an error.
package collective

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/anonymize"
)

// #region wire-types

// pushRequest is the upload body. Patterns carry only hashed context and
// categorical fields.
type pushRequest struct {
	Patterns []anonymize.Pattern `json:"patterns"`
}

// insightsResponse is the download body.
type insightsResponse struct {
	Insights []anonymize.Insight `json:"insights"`
}

// #endregion wire-types

// #region client

// Client talks to the collective backend. Availability is tracked so the
// engine can surface the degraded local-only mode.
type Client struct {
	baseURL   string
	http      *http.Client
	available bool
}

// NewClient creates a client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		available: true,
	}
}

// Available reports whether the last exchange with the backend succeeded.
func (c *Client) Available() bool {
	return c.available
}

// #endregion client

// #region push

// Push uploads queued patterns. Returns the IDs that were accepted.
func (c *Client) Push(ctx context.Context, patterns []anonymize.Pattern) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(pushRequest{Patterns: patterns})
	if err != nil {
		return nil, fmt.Errorf("marshal patterns: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/patterns", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.available = false
		return nil, fmt.Errorf("push patterns: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.available = false
		return nil, fmt.Errorf("push patterns: backend returned %d", resp.StatusCode)
	}

	c.available = true
	ids := make([]string, len(patterns))
	for i, p := range patterns {
		ids[i] = p.ID
	}
	return ids, nil
}

// #endregion push

// #region fetch

// FetchInsights downloads aggregated insights, optionally filtered to a
// profile type.
func (c *Client) FetchInsights(ctx context.Context, profileType string) ([]anonymize.Insight, error) {
	u := c.baseURL + "/v1/insights"
	if profileType != "" {
		u += "?profile=" + url.QueryEscape(profileType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.available = false
		return nil, fmt.Errorf("fetch insights: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.available = false
		return nil, fmt.Errorf("fetch insights: backend returned %d", resp.StatusCode)
	}

	var out insightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.available = false
		return nil, fmt.Errorf("decode insights: %w", err)
	}

	c.available = true
	return out.Insights, nil
}

// #endregion fetch
