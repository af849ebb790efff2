// Package client provides the core Reddit HTTP client with rate limiting,
// authentication, retries, and error handling.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/mkarlsen/reddit-user-client/pkg/auth"
	"github.com/mkarlsen/reddit-user-client/pkg/logging"
	"github.com/mkarlsen/reddit-user-client/pkg/ratelimit"
)

// Base URLs for the Reddit API. Authenticated traffic goes through
// oauth.reddit.com; the public JSON endpoints live on www.reddit.com.
const (
	DefaultBaseURL       = "https://oauth.reddit.com"
	DefaultPublicBaseURL = "https://www.reddit.com"
)

// Prometheus metrics for Reddit client operations.
var (
	redditRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reddit_requests_total",
		Help: "Total Reddit API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	redditRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reddit_request_duration_seconds",
		Help:    "Reddit API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	redditErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reddit_errors_total",
		Help: "Total Reddit API errors by class",
	}, []string{"class"})
)

// Client is the main Reddit API client.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	auth       auth.TokenSource
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the Reddit API. Defaults to DefaultBaseURL when Auth is
	// set, DefaultPublicBaseURL otherwise.
	BaseURL string

	// User-Agent header (REQUIRED by Reddit)
	// Format: "platform:app-id:version (by /u/username)"
	UserAgent string

	// Auth supplies bearer tokens for outgoing requests. Nil means
	// unauthenticated access to the public JSON endpoints.
	Auth auth.TokenSource

	// Timeout for individual HTTP requests.
	Timeout time.Duration

	// MaxRetries caps attempts per request, including the first.
	// Zero keeps the per-class defaults.
	MaxRetries int

	// Rate limiting
	RequestsPerMinute int
	Burst             int
}

// DefaultConfig returns a safe default configuration.
// Reddit allows 60 requests per minute for script applications.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:         userAgent,
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RequestsPerMinute: 60,
		Burst:             5,
	}
}

// New creates a new Reddit client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		if cfg.Auth != nil {
			cfg.BaseURL = DefaultBaseURL
		} else {
			cfg.BaseURL = DefaultPublicBaseURL
		}
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := logging.NewLogger("client")

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
		Burst:             cfg.Burst,
	}, logger)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
		auth:    cfg.Auth,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Do performs an HTTP request with rate limiting, authentication, and retry
// handling. This is the core request method; a returned response may still
// carry a 4xx status as those are not retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		redditRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Pace the request
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Rate limit wait failed")
		return nil, err
	}

	// Step 2: Set headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	// Step 3: Attach bearer token
	if c.auth != nil {
		token, err := c.auth.Token(ctx)
		if err != nil {
			redditErrorsTotal.WithLabelValues("auth").Inc()
			return nil, fmt.Errorf("obtain token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing request")

	// Step 4: Execute with retry logic
	var resp *http.Response

	retryErr := retryWithBackoff(ctx, c.logger, c.config.MaxRetries, func() (ErrorClass, error) {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			redditErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			redditRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return ErrorClassNetwork, reqErr
		}

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			redditErrorsTotal.WithLabelValues(string(errClass)).Inc()
			redditRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Request error")

			// A rejected token is discarded so the next request
			// authenticates fresh.
			if resp.StatusCode == http.StatusUnauthorized {
				c.invalidateToken(ctx)
			}

			if shouldRetry(errClass) {
				apiErr := &APIError{
					StatusCode: resp.StatusCode,
					ErrorClass: errClass,
					Message:    resp.Status,
				}
				resp.Body.Close()
				return errClass, apiErr
			}

			// Client errors are not retried; the caller decides what
			// a 4xx means for its request.
			return errClass, nil
		}

		redditRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return "", nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// Get performs a GET request against path with the given raw query.
// rawQuery is appended to the URL verbatim.
func (c *Client) Get(ctx context.Context, path, rawQuery string) (*http.Response, error) {
	requestURL := c.baseURL + path
	if rawQuery != "" {
		requestURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON performs a GET request and returns the response body.
// Non-2xx responses come back as *APIError.
func (c *Client) GetJSON(ctx context.Context, path, rawQuery string) ([]byte, error) {
	resp, err := c.Get(ctx, path, rawQuery)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		}
	}

	return body, nil
}

// invalidateToken discards a stored token after the API rejected it.
func (c *Client) invalidateToken(ctx context.Context) {
	invalidator, ok := c.auth.(interface{ Invalidate(context.Context) error })
	if !ok {
		return
	}
	if err := invalidator.Invalidate(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to invalidate token")
		return
	}
	c.logger.Debug().Msg("Invalidated rejected token")
}

// BaseURL returns the resolved base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
