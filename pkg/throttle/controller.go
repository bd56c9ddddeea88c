package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for throttle coordination.
var (
	throttleAvailablePoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopify_throttle_available_points",
		Help: "Estimated available query cost in the Shopify leaky bucket",
	})

	throttleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopify_throttle_waits_total",
		Help: "Total number of requests delayed because the cost budget was low",
	})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopify_throttle_wait_seconds",
		Help:    "Duration of throttle waits in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	throttleAcquiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopify_throttle_acquires_total",
		Help: "Total number of budget acquisitions",
	})
)

// Configuration defaults for the controller.
const (
	// DefaultMinBucket is the floor, in cost points, below which requests
	// are delayed. A safety margin, not a ceiling on request size.
	DefaultMinBucket = 50.0

	// DefaultMinSleep is the minimum pause imposed when throttling, so
	// callers never busy-loop on sub-second deficits.
	DefaultMinSleep = time.Second

	// DefaultCost is the conservative pre-request cost estimate used when
	// a query's declared cost is unknown. The real cost only arrives in
	// response telemetry and is corrected post-hoc via Feedback.
	DefaultCost = 1.0
)

// Config holds controller tuning.
type Config struct {
	// MinBucket is the budget floor below which Acquire delays.
	MinBucket float64

	// MinSleep is the minimum wait duration when throttling.
	MinSleep time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MinBucket: DefaultMinBucket,
		MinSleep:  DefaultMinSleep,
	}
}

// Controller gates request issuance against one shop's cost budget.
// One instance exists per shop endpoint and is shared by every session
// targeting that shop; it is safe for concurrent use.
//
// The mutex covers only budget reads and updates. Sleeping and network I/O
// always happen outside it, so one caller's wait never blocks another
// caller's budget check.
type Controller struct {
	mu     sync.Mutex
	budget *Budget
	config Config
	// notify is closed and replaced on every Feedback, waking sleepers
	// early when fresh telemetry arrives.
	notify chan struct{}
	// acquires counts Acquire calls, for observability and tests.
	acquires int64
	logger   zerolog.Logger
}

// New creates a controller with the given configuration. Zero or negative
// config fields fall back to the package defaults.
func New(cfg Config, logger zerolog.Logger) *Controller {
	if cfg.MinBucket <= 0 {
		cfg.MinBucket = DefaultMinBucket
	}
	if cfg.MinSleep <= 0 {
		cfg.MinSleep = DefaultMinSleep
	}
	return &Controller{
		budget: NewBudget(),
		config: cfg,
		notify: make(chan struct{}),
		logger: logger,
	}
}

// Acquire blocks until the budget is likely to accommodate cost, then
// reserves the cost optimistically. When the projected budget is below the
// floor it sleeps the larger of MinSleep and the time needed to restore the
// deficit, re-checks the projection once, and proceeds regardless: the wait
// reduces the odds of a THROTTLED response, it does not guarantee capacity.
//
// Acquire never fails on its own; the only error returned is ctx.Err()
// when the context is cancelled during the wait.
func (c *Controller) Acquire(ctx context.Context, cost float64) error {
	if cost <= 0 {
		cost = DefaultCost
	}

	c.mu.Lock()
	c.acquires++
	throttleAcquiresTotal.Inc()
	now := time.Now()
	projected := c.budget.Project(now)
	if c.admits(projected, cost) {
		c.reserve(now, cost)
		c.mu.Unlock()
		return nil
	}
	wait := c.waitDuration(projected)
	notify := c.notify
	c.mu.Unlock()

	throttleWaitsTotal.Inc()
	throttleWaitSeconds.Observe(wait.Seconds())
	c.logger.Debug().
		Float64("projected", projected).
		Float64("cost", cost).
		Dur("wait", wait).
		Msg("Cost budget low - delaying request")

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	case <-notify:
		// Fresh telemetry arrived; re-check immediately.
	}

	// Single re-check: fold the elapsed restore into the estimate and
	// reserve, whatever the projection now says.
	c.mu.Lock()
	c.reserve(time.Now(), cost)
	c.mu.Unlock()
	return nil
}

// Feedback merges authoritative throttle telemetry from a response into the
// budget and wakes any sleeping callers. Callers skip Feedback entirely when
// a response carries no telemetry; the projection stays in effect until the
// next real observation.
func (c *Controller) Feedback(currentlyAvailable, maximumAvailable, restoreRate float64) {
	c.mu.Lock()
	c.budget.Observe(currentlyAvailable, maximumAvailable, restoreRate, time.Now())
	throttleAvailablePoints.Set(c.budget.Available)
	close(c.notify)
	c.notify = make(chan struct{})
	c.mu.Unlock()

	c.logger.Debug().
		Float64("currently_available", currentlyAvailable).
		Float64("maximum_available", maximumAvailable).
		Float64("restore_rate", restoreRate).
		Msg("Throttle status updated from response")
}

// Available returns the current projected budget estimate.
func (c *Controller) Available() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget.Project(time.Now())
}

// Acquires returns the total number of Acquire calls made so far.
func (c *Controller) Acquires() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquires
}

// admits reports whether a projection allows a request of the given cost to
// proceed without waiting. The floor applies for ordinary requests; a
// request costing more than the floor only needs its own cost covered.
func (c *Controller) admits(projected, cost float64) bool {
	threshold := c.config.MinBucket
	if cost > threshold {
		threshold = cost
	}
	return projected >= threshold
}

// waitDuration computes how long to sleep for a given projection: the
// larger of MinSleep and the time needed to restore the deficit.
func (c *Controller) waitDuration(projected float64) time.Duration {
	if c.budget.RestoreRate <= 0 {
		return c.config.MinSleep
	}
	deficit := c.config.MinBucket - projected
	restore := time.Duration(deficit / c.budget.RestoreRate * float64(time.Second))
	if restore < c.config.MinSleep {
		return c.config.MinSleep
	}
	return restore
}

// reserve advances the estimate to now and decrements it by cost.
// Caller must hold the mutex.
func (c *Controller) reserve(now time.Time, cost float64) {
	c.budget.advance(now)
	c.budget.Available -= cost
	throttleAvailablePoints.Set(c.budget.Available)
}
