// Package firms fetches the NASA FIRMS active-fire KML feed.
package firms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/active-fire-etl/internal/adapter/kml"
	"github.com/couchcryptid/active-fire-etl/internal/domain"
	"github.com/couchcryptid/active-fire-etl/internal/observability"
)

// maxErrorBody caps how much of a failed response body ends up in the error.
const maxErrorBody = 512

// Client downloads one KML feed. It implements pipeline.Extractor.
type Client struct {
	feedURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. The timeout bounds the whole request,
// including reading the body.
func NewClient(feedURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		feedURL:   feedURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch performs a single GET of the feed and returns the raw body. Any
// transport failure or non-2xx status is an error; there is no retry.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	body, err := c.fetch(ctx)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.metrics.FetchBytes.Set(float64(len(body)))
	c.logger.Debug("feed fetched", "url", c.feedURL, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("fetch feed: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return body, nil
}

// Extract fetches the feed and decodes its placemarks.
func (c *Client) Extract(ctx context.Context) ([]domain.Placemark, error) {
	body, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	placemarks, err := kml.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return placemarks, nil
}
