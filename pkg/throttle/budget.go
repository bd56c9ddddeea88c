// Package throttle implements leaky-bucket rate limit coordination for the
// Shopify Admin GraphQL API. It tracks a shared per-shop cost budget,
// corrected by throttleStatus telemetry from responses, and gates request
// issuance so the estimated budget rarely goes negative.
package throttle

import (
	"time"
)

// Defaults assumed until the first throttleStatus observation arrives.
// These match the standard Shopify Admin API bucket for custom apps.
const (
	// DefaultAvailable is the assumed initial bucket fill in cost points.
	DefaultAvailable = 1000.0

	// DefaultRestoreRate is the assumed refill rate in cost points per second.
	DefaultRestoreRate = 50.0

	// DefaultMaxAvailable is the assumed bucket capacity in cost points.
	DefaultMaxAvailable = 1000.0
)

// Budget is the in-memory estimate of remaining query cost for one shop.
// Between observations the estimate is projected forward linearly at
// RestoreRate; an observation from response telemetry always overwrites
// the projection, since the API's view is authoritative.
//
// Budget itself is not safe for concurrent use. A Controller owns exactly
// one Budget and serializes all access to it.
type Budget struct {
	// Available is the estimated remaining cost in the bucket as of
	// LastUpdate. Transient negative values are tolerated: reservations
	// are optimistic and estimates are approximate.
	Available float64

	// RestoreRate is the cost restored per second.
	RestoreRate float64

	// MaxAvailable is the last-known bucket capacity.
	MaxAvailable float64

	// LastUpdate is when Available was last advanced or observed.
	LastUpdate time.Time
}

// NewBudget returns a budget seeded with the standard Shopify defaults.
func NewBudget() *Budget {
	return &Budget{
		Available:    DefaultAvailable,
		RestoreRate:  DefaultRestoreRate,
		MaxAvailable: DefaultMaxAvailable,
		LastUpdate:   time.Now(),
	}
}

// Project returns the linearly-restored estimate of Available at now,
// capped at the last-known capacity. Pure; does not modify the budget.
func (b *Budget) Project(now time.Time) float64 {
	elapsed := now.Sub(b.LastUpdate).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	projected := b.Available + b.RestoreRate*elapsed
	if projected > b.MaxAvailable {
		projected = b.MaxAvailable
	}
	return projected
}

// Observe overwrites the estimate with the API's authoritative throttle
// status. Non-positive capacity or restore rate values are ignored and the
// previous values kept, so a malformed telemetry block cannot stall the
// projection.
func (b *Budget) Observe(currentlyAvailable, maximumAvailable, restoreRate float64, now time.Time) {
	b.Available = currentlyAvailable
	if maximumAvailable > 0 {
		b.MaxAvailable = maximumAvailable
	}
	if restoreRate > 0 {
		b.RestoreRate = restoreRate
	}
	b.LastUpdate = now
}

// advance folds the projection at now into the stored estimate.
func (b *Budget) advance(now time.Time) {
	b.Available = b.Project(now)
	b.LastUpdate = now
}
