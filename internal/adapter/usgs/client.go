package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/observability"
)

const userAgent = "quake-report/1.0 (+https://github.com/couchcryptid/quake-report)"

// Client fetches raw feed documents from the USGS event API.
// It implements pipeline.Fetcher.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. connectTimeout bounds dialing and the TLS
// handshake; readTimeout bounds waiting for response headers. The overall
// request, body included, may take at most their sum.
func NewClient(connectTimeout, readTimeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch issues a single GET to rawURL and returns the body as UTF-8 text.
// It fails with domain.ErrInvalidURL for a URL that is not absolute http(s),
// *domain.HTTPStatusError for any status but 200, and *domain.TransportError
// for connection and read failures. There are no retries.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		c.metrics.FetchRequests.WithLabelValues("invalid_url").Inc()
		return "", err
	}

	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("invalid_url").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("transport_error").Inc()
		return "", &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchRequests.WithLabelValues("http_error").Inc()
		c.logger.Debug("feed request rejected", "status", resp.StatusCode, "url", rawURL)
		return "", &domain.HTTPStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("transport_error").Inc()
		return "", &domain.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("feed fetched", "bytes", len(body), "duration", time.Since(start))
	return strings.ToValidUTF8(string(body), "�"), nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", domain.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}
	return nil
}
