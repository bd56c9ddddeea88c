package client

import (
	"context"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for THROTTLED retries.
var (
	throttledRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopify_gql_throttled_retries_total",
		Help: "Total number of retries after a THROTTLED response",
	})

	throttledBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopify_gql_throttled_backoff_seconds",
		Help:    "Backoff duration before retrying a THROTTLED response",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	})

	throttledExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopify_gql_throttled_exhausted_total",
		Help: "Total number of times THROTTLED retries were exhausted",
	})
)

// RetryConfig holds the configuration for THROTTLED-response retries.
// Transport-level retry (connect errors, 5xx, 429) lives in the transport
// and is not governed by this config.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the backoff before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default THROTTLED retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoffFor returns the jittered backoff before retry number attempt
// (1-based). Jitter is ±20% to avoid synchronized retries across callers.
func (c RetryConfig) backoffFor(attempt int) time.Duration {
	backoff := c.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * c.BackoffMultiplier)
		if backoff > c.MaxBackoff {
			backoff = c.MaxBackoff
			break
		}
	}
	return time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
}

// waitBackoff sleeps for d with context cancellation support.
func waitBackoff(ctx context.Context, d time.Duration) error {
	throttledBackoffSeconds.Observe(d.Seconds())
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
