// Package client executes GraphQL queries against the Shopify Admin API
// with shared leaky-bucket throttle coordination, typed error taxonomy,
// and optional response caching.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/shopify-gql-client/pkg/cache"
	"github.com/Sternrassler/shopify-gql-client/pkg/throttle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for query execution.
var (
	gqlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopify_gql_requests_total",
		Help: "Total GraphQL requests by outcome",
	}, []string{"outcome"})

	gqlRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopify_gql_request_duration_seconds",
		Help:    "GraphQL request duration in seconds, including throttle waits",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	gqlQueryCost = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopify_gql_query_cost",
		Help:    "Actual query cost reported by the API",
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000},
	})
)

// ThrottleStatus is the API's authoritative view of the cost bucket.
type ThrottleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// CostInfo is the extensions.cost telemetry block of a response.
type CostInfo struct {
	RequestedQueryCost float64         `json:"requestedQueryCost"`
	ActualQueryCost    float64         `json:"actualQueryCost"`
	ThrottleStatus     *ThrottleStatus `json:"throttleStatus"`
}

// Response is one decoded GraphQL round trip.
type Response struct {
	// Data is the decoded top-level data object.
	Data map[string]any

	// Errors carries remote errors that accompanied usable data (partial
	// success). Fatal error lists are returned as error values instead,
	// so callers detect partial failure without losing the data.
	Errors []ErrorDetail

	// Cost is the throttle telemetry block, when the API sent one.
	Cost *CostInfo
}

// Partial reports whether the response succeeded only partially.
func (r *Response) Partial() bool {
	return len(r.Errors) > 0
}

// envelope is the GraphQL wire response shape.
type envelope struct {
	Data   map[string]any `json:"data"`
	Errors []ErrorDetail  `json:"errors"`
	Ext    *struct {
		Cost *CostInfo `json:"cost"`
	} `json:"extensions"`
}

// Execute runs one GraphQL query against the session's shop.
//
// The call acquires throttle budget first (a conservative cost of 1, since
// the real cost is only known from response telemetry), posts the request,
// feeds any extensions.cost.throttleStatus back into the shared budget, and
// decodes the envelope. A purely THROTTLED error response is retried with
// backoff per the session's retry config; other error shapes map onto the
// package error taxonomy.
func Execute(ctx context.Context, s *Session, query string, variables map[string]any) (*Response, error) {
	start := time.Now()
	defer func() {
		gqlRequestDuration.Observe(time.Since(start).Seconds())
	}()

	if variables == nil {
		variables = map[string]any{}
	}
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	for attempt := 1; ; attempt++ {
		if err := s.Throttle.Acquire(ctx, throttle.DefaultCost); err != nil {
			return nil, err
		}

		resp, err := s.Transport.Post(ctx, s.GraphQLURL, s.headers(), payload)
		if err != nil {
			gqlRequestsTotal.WithLabelValues("transport_error").Inc()
			s.logger.Error().Err(err).Msg("Transport request failed")
			return nil, &TransportError{Err: err}
		}

		if resp.StatusCode != http.StatusOK {
			gqlRequestsTotal.WithLabelValues("http_error").Inc()
			s.logger.Warn().Int("status_code", resp.StatusCode).Msg("Admin API returned non-200 status")
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		}

		var env envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			gqlRequestsTotal.WithLabelValues("http_error").Inc()
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		}

		// Merge throttle telemetry before deciding anything else; even a
		// THROTTLED rejection reports the authoritative bucket state.
		var cost *CostInfo
		if env.Ext != nil && env.Ext.Cost != nil {
			cost = env.Ext.Cost
			if ts := cost.ThrottleStatus; ts != nil {
				s.Throttle.Feedback(ts.CurrentlyAvailable, ts.MaximumAvailable, ts.RestoreRate)
			}
			if cost.ActualQueryCost > 0 {
				gqlQueryCost.Observe(cost.ActualQueryCost)
			}
		}

		if len(env.Errors) > 0 && env.Data == nil {
			if isThrottled(env.Errors) {
				if attempt < s.retry.MaxAttempts {
					throttledRetriesTotal.Inc()
					backoff := s.retry.backoffFor(attempt)
					s.logger.Warn().
						Int("attempt", attempt).
						Dur("backoff", backoff).
						Msg("Query throttled by API - retrying after backoff")
					if err := waitBackoff(ctx, backoff); err != nil {
						return nil, err
					}
					continue
				}
				throttledExhaustedTotal.Inc()
				gqlRequestsTotal.WithLabelValues("throttled").Inc()
				return nil, &ThrottleError{Errors: env.Errors, Err: ErrThrottleRetryExhausted}
			}
			gqlRequestsTotal.WithLabelValues("graphql_error").Inc()
			return nil, &GraphQLError{Errors: env.Errors}
		}

		if env.Data == nil {
			gqlRequestsTotal.WithLabelValues("graphql_error").Inc()
			return nil, &GraphQLError{Errors: []ErrorDetail{
				{Message: "response contained neither data nor errors"},
			}}
		}

		if len(env.Errors) > 0 {
			gqlRequestsTotal.WithLabelValues("partial").Inc()
			s.logger.Warn().
				Int("error_count", len(env.Errors)).
				Msg("Partial result - data returned alongside errors")
		} else {
			gqlRequestsTotal.WithLabelValues("ok").Inc()
		}

		return &Response{Data: env.Data, Errors: env.Errors, Cost: cost}, nil
	}
}

// ExecuteCached runs a query through the session's cache. On a hit the
// cached data is returned without touching the network or the throttle
// budget; on a miss the query executes normally and a full (non-partial)
// result is stored for ttl. Cache failures degrade to a direct request.
//
// Sessions without a cache behave exactly like Execute.
func ExecuteCached(ctx context.Context, s *Session, query string, variables map[string]any, ttl time.Duration) (*Response, error) {
	if s.Cache == nil {
		return Execute(ctx, s, query, variables)
	}

	key := cache.Key{Shop: s.ShopURL, Query: query, Variables: variables}

	entry, err := s.Cache.Get(ctx, key)
	if err == nil {
		var data map[string]any
		if err := json.Unmarshal(entry.Data, &data); err == nil {
			s.logger.Debug().Str("key", key.String()).Msg("Query served from cache")
			return &Response{Data: data}, nil
		}
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn().Err(err).Msg("Cache get failed - falling back to direct request")
	}

	resp, err := Execute(ctx, s, query, variables)
	if err != nil {
		return nil, err
	}

	// Partial results are not cached; a later full answer should win.
	if !resp.Partial() && ttl > 0 {
		data, err := json.Marshal(resp.Data)
		if err == nil {
			entry := cache.NewEntry(data, ttl)
			if err := s.Cache.Set(ctx, key, entry); err != nil {
				s.logger.Warn().Err(err).Msg("Cache set failed")
			}
		}
	}

	return resp, nil
}
