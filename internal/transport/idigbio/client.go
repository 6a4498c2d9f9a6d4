// Package idigbio implements the HTTP client for the iDigBio search API.
package idigbio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	api "github.com/acislab/ichatbio-idigbio-agent/internal/idigbio"
	"github.com/acislab/ichatbio-idigbio-agent/internal/metrics"
)

// Client calls the iDigBio search API endpoints.
type Client struct {
	http       *http.Client
	searchBase string
	logger     *zap.Logger
}

// Config holds the search API client settings.
type Config struct {
	SearchBase string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewClient creates an iDigBio search API client.
func NewClient(cfg *Config) *Client {
	base := cfg.SearchBase
	if base == "" {
		base = api.DefaultSearchAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		searchBase: base,
		logger:     logger,
	}
}

// SearchRecords POSTs a sanitized parameter object to the occurrence records
// endpoint.
func (c *Client) SearchRecords(ctx context.Context, params json.RawMessage) (api.SearchResult, error) {
	body, err := c.post(ctx, api.RecordsSearchPath, params)
	if err != nil {
		return api.SearchResult{}, err
	}
	return decodeSearchResult(api.RecordsSearchPath, body)
}

// SearchMedia POSTs a sanitized parameter object to the media records
// endpoint.
func (c *Client) SearchMedia(ctx context.Context, params json.RawMessage) (api.SearchResult, error) {
	body, err := c.post(ctx, api.MediaSearchPath, params)
	if err != nil {
		return api.SearchResult{}, err
	}
	return decodeSearchResult(api.MediaSearchPath, body)
}

// TopRecords GETs the records summary endpoint using the already-encoded
// query URL and returns the parsed per-value counts.
func (c *Client) TopRecords(ctx context.Context, queryURL string) (api.TopCounts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, http.NoBody)
	if err != nil {
		return api.TopCounts{}, fmt.Errorf("build summary request: %w", err)
	}
	body, err := c.do(req, api.TopRecordsPath)
	if err != nil {
		return api.TopCounts{}, err
	}
	counts, err := api.ParseTopCounts(body)
	if err != nil {
		return api.TopCounts{}, fmt.Errorf("%w: %w", domain.ErrUpstreamAPI, err)
	}
	return counts, nil
}

func (c *Client) post(ctx context.Context, endpoint string, params json.RawMessage) ([]byte, error) {
	sanitized, err := api.SanitizeBody(params)
	if err != nil {
		return nil, fmt.Errorf("sanitize request body: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.searchBase+endpoint, bytes.NewReader(sanitized),
	)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	start := time.Now()

	resp, err := c.http.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUpstreamAPI, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, resp.Status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	c.logger.Debug("iDigBio API response",
		zap.String("endpoint", endpoint),
		zap.String("status", resp.Status),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", domain.ErrUpstreamAPI, endpoint, err)
	}
	return body, nil
}

func decodeSearchResult(endpoint string, body []byte) (api.SearchResult, error) {
	var result api.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return api.SearchResult{}, fmt.Errorf("%w: decode %s response: %w", domain.ErrUpstreamAPI, endpoint, err)
	}
	return result, nil
}
