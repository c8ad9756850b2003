package backend

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client represents a client to communicate with an upstream HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewBackendClient creates a new Client with the specified base URL. A zero
// timeout leaves the request bounded only by its context.
func NewBackendClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Forward sends the HTTP request to the upstream server and returns the response.
func (c *Client) Forward(ctx context.Context, method, path string, headers http.Header, body io.Reader) (*http.Response, error) {
	// Construct the full URL.
	url := c.baseURL + path

	// Create a new HTTP request with context.
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	// Copy headers.
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	// Send the request to the upstream.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}
