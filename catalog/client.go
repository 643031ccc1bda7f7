// Package catalog talks to the product catalog REST API.
package catalog

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

	"go.uber.org/zap"

	"selection/logic"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx catalog responses.
	ErrUnexpectedStatus = errors.New("unexpected catalog status")
	// ErrSearchFailed is returned when the catalog reports success=false.
	ErrSearchFailed = errors.New("catalog search failed")
)

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 4 << 20
)

// searchResponse is the catalog's envelope for product searches.
type searchResponse struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	Message string            `json:"message,omitempty"`
}

// Client searches the product catalog.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ logic.ProductSearcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates a catalog client for baseURL, e.g. "http://localhost:3000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search looks up products matching query. Entries that are not JSON
// objects are dropped; the rest are returned unnormalized.
func (c *Client) Search(ctx context.Context, query string) ([]logic.RawProduct, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("catalog returned unexpected status",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		c.logger.Warn("catalog response undecodable", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if !body.Success {
		c.logger.Warn("catalog reported failure",
			zap.String("query", query),
			zap.String("message", body.Message),
		)
		return nil, ErrSearchFailed
	}

	products := make([]logic.RawProduct, 0, len(body.Data))
	dropped := 0
	for _, entry := range body.Data {
		var raw logic.RawProduct
		if err := json.Unmarshal(entry, &raw); err != nil || raw == nil {
			dropped++
			continue
		}
		products = append(products, raw)
	}
	if dropped > 0 {
		c.logger.Debug("dropped non-object catalog entries",
			zap.String("query", query),
			zap.Int("dropped", dropped),
		)
	}
	return products, nil
}
