// Package opensea is a thin pass-through proxy for the OpenSea v2 API.
// Responses are forwarded as opaque JSON; the backend only contributes the
// API key the browser must not see.
package opensea

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.opensea.io/api/v2"

// Client calls the OpenSea REST API with the shared API key.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
	}
}

// NewClientWithBaseURL exists for tests against a local server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// Fetch GETs an endpoint (path plus query, starting with "/") and returns
// the raw body and upstream status code. A non-2xx upstream response is not
// an error here; the handler forwards the status as-is.
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build opensea request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read opensea response for %s: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}
