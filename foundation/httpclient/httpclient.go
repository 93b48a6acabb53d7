// Package httpclient provides basic http functions
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every request made through this package.
const DefaultTimeout = 10 * time.Second

// StatusError is returned when a request completes with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (s *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned status %d", s.URL, s.StatusCode)
}

// Client wraps an http.Client with a request timeout for JSON web services.
type Client struct {
	httpClient *http.Client
}

// MakeClient creates a Client. A zero timeout falls back to DefaultTimeout.
func MakeClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetJSON performs a GET against baseURL with query parameters and decodes the
// json response body into result. Returns *StatusError for non-2xx responses.
func (c *Client) GetJSON(ctx context.Context, baseURL string, params url.Values, result interface{}) error {
	requestURL := baseURL
	if len(params) > 0 {
		requestURL = baseURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", baseURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		//drain the body so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: baseURL, StatusCode: resp.StatusCode}
	}

	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response from %s: %w", baseURL, err)
	}
	return nil
}
