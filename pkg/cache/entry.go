package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a cached query result.
type Entry struct {
	// Data is the cached top-level data object, JSON-encoded.
	Data json.RawMessage `json:"data"`

	// Expires is when the entry becomes stale. Shopify sends no cache
	// headers, so the TTL is always caller-supplied.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry creates an entry expiring after ttl.
func NewEntry(data json.RawMessage, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:     data,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
