// Package fmp is a client for the Financial Modeling Prep (FMP) REST API.
// It covers the endpoints the dashboard needs: company search, profile,
// quote, key metrics and annual income / cash flow statements.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the FMP v3 API root.
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"

	defaultSearchLimit  = 10
	defaultHistoryLimit = 5
	defaultTimeout      = 30 * time.Second
)

var (
	// ErrNoAPIKey is returned when the client has no API key.
	ErrNoAPIKey = errors.New("fmp: API key not configured")
	// ErrSymbolNotFound is returned when FMP has no profile or quote for a symbol.
	ErrSymbolNotFound = errors.New("fmp: symbol not found")
	// ErrAPI is returned when FMP answers 200 with an error message body.
	ErrAPI = errors.New("fmp: api error")
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("fmp: %s returned HTTP %d", e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the FMP API. It is safe for concurrent use.
type Client struct {
	apiKey       string
	baseURL      string
	http         *http.Client
	searchLimit  int
	historyLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSearchLimit caps the number of search results.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithHistoryLimit sets how many annual periods of metrics and statements to fetch.
func WithHistoryLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.historyLimit = n
		}
	}
}

// New creates an FMP client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		http:         &http.Client{Timeout: defaultTimeout},
		searchLimit:  defaultSearchLimit,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the data source.
func (c *Client) Name() string { return "fmp" }

// Ping checks connectivity and the API key with a cheap quote request.
func (c *Client) Ping(ctx context.Context) error {
	var out []fmpQuote
	if err := c.getJSON(ctx, "/quote/AAPL", nil, &out); err != nil {
		return fmt.Errorf("fmp ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

// endpoint builds a full FMP URL with the API key appended.
func (c *Client) endpoint(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)
	return c.baseURL + path + "?" + q.Encode()
}

// getJSON performs a GET request to FMP and decodes the response into dest.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fmp %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("fmp request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Path: path, Body: snippet(data)}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// FMP reports bad keys and plan limits as {"Error Message": "..."} with 200.
		var apiErr struct {
			Message string `json:"Error Message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%w: %s", ErrAPI, apiErr.Message)
		}
		return fmt.Errorf("parse FMP JSON: %w", err)
	}
	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
