// Package http provides the HTTP client for the Kaveri portal API:
// location hierarchy fetches, captcha generation, and authenticated EC
// search calls.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/kaveri"
)

// DefaultBaseURL is the production portal address.
const DefaultBaseURL = "https://kaveri.karnataka.gov.in"

// DefaultTimeout bounds every request. The search endpoint is the slowest
// call and can take tens of seconds on large villages.
const DefaultTimeout = 60 * time.Second

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client talks to the portal API. One Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the portal address. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a portal API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequest builds a request with the browser-equivalent header set the
// portal expects on every API call.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// applySession attaches the session artifact: the opaque token rides in the
// _append header and the browser cookies go along verbatim.
func applySession(req *http.Request, session *kaveri.Session) {
	if session == nil {
		return
	}
	if session.Token != "" {
		req.Header.Set("_append", session.Token)
	}
	for _, c := range session.Cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

// postJSON posts the payload and decodes the response body into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "portal request failed: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "portal returned HTTP %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return kaveri.Errorf(kaveri.EUNAVAILABLE, "portal response for %s is not valid JSON: %s", path, err)
	}
	return nil
}
