// Package probe calls the plain HTTP endpoints a SurrealDB server exposes next to its RPC endpoint.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Client is a wrapper to make HTTP calls to the SurrealDB engine.
type Client struct {
	// URL is the base URL of the server, without the RPC path.
	URL  string
	HTTP *http.Client
}

// New creates a new Client for baseURL.
func New(baseURL string) Client {
	return Client{
		URL:  strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// Health is the outcome of a health check.
type Health struct {
	Status  string        `json:"status"`
	URL     string        `json:"url"`
	Latency time.Duration `json:"-"`
	// Details explains an unhealthy status.
	Details string `json:"details,omitempty"`
}

// Map renders h as an output item payload.
func (h Health) Map() map[string]any {
	m := map[string]any{
		"status":    h.Status,
		"url":       h.URL,
		"latencyMs": h.Latency.Milliseconds(),
	}
	if h.Details != "" {
		m["details"] = h.Details
	}
	return m
}

// Health calls GET /health. It never returns an error: any failure is reported
// as an unhealthy status with details.
func (c Client) Health(ctx context.Context) Health {
	h := Health{URL: c.URL + "/health"}

	start := time.Now()
	_, code, err := c.Request(ctx, "/health", http.MethodGet)
	h.Latency = time.Since(start)

	switch {
	case err != nil:
		h.Status = StatusUnhealthy
		h.Details = err.Error()
	case code != http.StatusOK:
		h.Status = StatusUnhealthy
		h.Details = fmt.Sprintf("unexpected status code %d", code)
	default:
		h.Status = StatusHealthy
	}
	return h
}

// Version calls GET /version and returns the trimmed body, e.g. "surrealdb-2.1.4".
func (c Client) Version(ctx context.Context) (string, error) {
	body, code, err := c.Request(ctx, "/version", http.MethodGet)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK {
		return "", fmt.Errorf("version endpoint returned status code %d", code)
	}
	v := strings.TrimSpace(string(body))
	if v == "" {
		return "", fmt.Errorf("version endpoint returned an empty body")
	}
	return v, nil
}

// Request performs a request without a body and returns the raw response body and status code.
func (c Client) Request(ctx context.Context, endpoint, method string) ([]byte, int, error) {
	if c.URL == "" {
		return nil, 0, fmt.Errorf("no server URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL+endpoint, http.NoBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "text/plain, application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
