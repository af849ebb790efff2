// Package ratelimit implements local pacing of outgoing Reddit API requests.
// Reddit grants OAuth clients a fixed request budget (60 requests per minute);
// the limiter spreads requests across that budget so a listing walk does not
// burn it within the first seconds of the window. No feedback from the server
// is consumed; the budget is fixed at construction.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for local pacing.
var (
	redditRateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reddit_ratelimit_waits_total",
		Help: "Total number of requests delayed by the local pacer",
	})

	redditRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reddit_ratelimit_wait_seconds",
		Help:    "Time spent waiting for a request slot",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})
)

// Config holds limiter configuration.
type Config struct {
	// RequestsPerMinute is the sustained request budget.
	RequestsPerMinute int

	// Burst is the number of requests that may go out back to back
	// before pacing kicks in.
	Burst int
}

// DefaultConfig returns the documented Reddit budget for OAuth clients.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		Burst:             5,
	}
}

// Limiter paces outgoing requests with a local token bucket.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a limiter from cfg. Non-positive values fall back to defaults.
func New(cfg Config, logger zerolog.Logger) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultConfig().Burst
	}

	interval := time.Minute / time.Duration(cfg.RequestsPerMinute)

	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), cfg.Burst),
		logger:  logger,
	}
}

// Wait blocks until a request slot is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	// Fast path: a slot is free, no delay to record.
	if l.limiter.Allow() {
		return nil
	}

	redditRateLimitWaitsTotal.Inc()
	start := time.Now()

	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	waited := time.Since(start)
	redditRateLimitWaitSeconds.Observe(waited.Seconds())

	if waited > time.Second {
		l.logger.Warn().
			Dur("waited", waited).
			Msg("Request delayed by local rate limit")
	} else {
		l.logger.Debug().
			Dur("waited", waited).
			Msg("Request paced")
	}

	return nil
}

// Allow reports whether a request may proceed immediately, consuming a
// slot when it can.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
