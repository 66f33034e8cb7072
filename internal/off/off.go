// Package off looks products up on Open Food Facts.
package off

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/product"
)

// ServiceName identifies the lookup in errors and logs.
const ServiceName = "product lookup"

// DefaultUserAgent is sent with every request, as Open Food Facts asks of API clients.
const DefaultUserAgent = "pantry/1.0 (+https://github.com/hpungsan/pantry)"

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// Client performs barcode lookups. No retries are made.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New returns a Client for opts.BaseURL.
func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &Client{http: client, logger: opts.Logger}
}

// Fetch returns the raw lookup record for barcode.
// Transport errors, non-2xx responses and unparseable bodies are UPSTREAM_FAILURE.
func (c *Client) Fetch(ctx context.Context, barcode string) (*product.RawRecord, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, errors.NewInvalidRequest("barcode is required")
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("barcode", barcode).
		Get("/api/v0/product/{barcode}.json")
	if err != nil {
		return nil, errors.NewUpstreamFailure(ServiceName, err)
	}

	c.logger.Debug("product lookup",
		zap.String("barcode", barcode),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, errors.NewUpstreamFailure(ServiceName, fmt.Errorf("HTTP %d", resp.StatusCode()))
	}

	var raw product.RawRecord
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, errors.NewUpstreamFailure(ServiceName, fmt.Errorf("decode response: %w", err))
	}
	return &raw, nil
}

// Lookup fetches and normalizes barcode.
// A record with status 0 is NOT_FOUND, distinct from UPSTREAM_FAILURE.
func (c *Client) Lookup(ctx context.Context, barcode string) (*product.Product, error) {
	raw, err := c.Fetch(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return product.Normalize(raw, strings.TrimSpace(barcode))
}
