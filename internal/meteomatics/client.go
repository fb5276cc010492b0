// Package meteomatics implements the upstream weather API integration: the
// authenticated HTTP client, the time-range and parameter request planner,
// the tolerant response parser, and the weather-symbol condition mapping.
//
// All outbound calls are routed through the Client, which wraps a circuit
// breaker to stop hammering a failing upstream. There is no internal retry:
// retry policy belongs to the refresh cadence, and the rate-limit cool-down
// managed by the coordinator is the only self-managed backoff.
package meteomatics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker/v2"

	"meteopoll/internal/types"
)

// DefaultRequestTimeout bounds each upstream request.
const DefaultRequestTimeout = 30 * time.Second

// maxResponseBody caps how much of an upstream response is read (4 MB).
const maxResponseBody = 4 << 20

// ClientConfig holds the construction parameters for a Client.
type ClientConfig struct {
	BaseURL    string
	Model      string
	Coordinate types.Coordinate
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger
}

// Client issues authenticated GET requests against the weather API for a
// single installation coordinate. Credentials are passed per call because
// they can be rotated at runtime.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	baseURL    string
	model      string
	coordinate types.Coordinate
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a Client with the given configuration. A nil HTTP client
// is replaced with one using the configured timeout.
func NewClient(httpClient *http.Client, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "meteomatics",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &Client{
		httpClient: httpClient,
		breaker:    cb,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		coordinate: cfg.Coordinate,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// Fetch requests the given parameters over the given time range and returns
// the parsed per-parameter series.
//
// Error mapping:
//   - HTTP 429       -> upstream_rate_limited (caller records the cool-down)
//   - HTTP 401       -> auth_invalid_credentials
//   - other non-2xx  -> upstream_status carrying the status code
//   - network/timeout or open breaker -> upstream_comms
//   - unparseable body -> upstream_malformed_response
func (c *Client) Fetch(ctx context.Context, creds types.Credentials, timeRange string, parameters []string) (map[string]types.TimeSeries, error) {
	body, err := c.get(ctx, creds, timeRange, parameters)
	if err != nil {
		return nil, err
	}
	return ParseResponse(body)
}

// Probe issues a minimal single-parameter request to validate credentials.
// A zero-length range at the current hour keeps the probe as cheap as the
// provider allows. 401 maps to auth_invalid_credentials so callers can show
// "wrong credentials" distinctly from connectivity failure.
func (c *Client) Probe(ctx context.Context, creds types.Credentials, now time.Time, loc *time.Location) error {
	instant := TruncateHour(now.In(loc))
	probeRange := FormatRange(instant, instant, StepHourly)
	_, err := c.get(ctx, creds, probeRange, []string{ParamTemperature})
	return err
}

// get executes one authenticated request and returns the raw body.
func (c *Client) get(ctx context.Context, creds types.Credentials, timeRange string, parameters []string) ([]byte, error) {
	reqURL := c.buildURL(timeRange, parameters)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build upstream request", err)
	}
	req.SetBasicAuth(creds.Username, creds.Password.Unmask())
	req.Header.Set("Accept", "application/json")
	// Request gzip explicitly; the transport then leaves decompression to us.
	req.Header.Set("Accept-Encoding", "gzip")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx counts as a breaker failure; 4xx (including 429) does not,
		// so rate limiting stays distinguishable from a tripped breaker.
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, c.mapTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnContext(ctx, "upstream rate limit reached",
			"status", resp.StatusCode,
		)
		return nil, types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			"upstream rate limit reached",
			nil,
		)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, types.NewAppError(
			types.ErrCodeAuthInvalidCreds,
			"upstream rejected the configured credentials",
			nil,
		)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamStatus,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode),
			nil,
			map[string]any{"status": resp.StatusCode},
		)
	}

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, gzErr := gzip.NewReader(resp.Body)
		if gzErr != nil {
			return nil, types.NewAppError(
				types.ErrCodeUpstreamMalformed,
				"failed to open gzip response body",
				gzErr,
			)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxResponseBody))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamComms, "failed to read upstream response", err)
	}
	return body, nil
}

// buildURL assembles the provider URL:
// {base}/{range}/{comma separated parameters}/{lat},{lon}/json?model={model}
func (c *Client) buildURL(timeRange string, parameters []string) string {
	// Time ranges and parameter names only contain URL-path-safe characters
	// (alphanumerics, ':', ',', '+', '-', '_', '.'); the provider expects
	// them unescaped.
	u := fmt.Sprintf("%s/%s/%s/%v,%v/json",
		c.baseURL,
		timeRange,
		strings.Join(parameters, ","),
		c.coordinate.Latitude,
		c.coordinate.Longitude,
	)
	if c.model != "" {
		u += "?model=" + url.QueryEscape(c.model)
	}
	return u
}

// mapTransportError translates breaker and network failures into AppErrors.
func (c *Client) mapTransportError(err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamComms,
			"circuit breaker is open; upstream unavailable",
			err,
		)
	}
	return types.NewAppError(
		types.ErrCodeUpstreamComms,
		"error communicating with upstream",
		err,
	)
}
