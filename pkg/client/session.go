package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/shopify-gql-client/pkg/cache"
	"github.com/Sternrassler/shopify-gql-client/pkg/logging"
	"github.com/Sternrassler/shopify-gql-client/pkg/throttle"
	"github.com/Sternrassler/shopify-gql-client/pkg/transport"
	"github.com/rs/zerolog"
)

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2025-01"

// Config holds the session configuration.
type Config struct {
	// ShopURL is the store base URL, e.g. "https://my-store.myshopify.com".
	ShopURL string

	// AccessToken authenticates against the Admin API.
	AccessToken string

	// APIVersion selects the Admin API version (default: DefaultAPIVersion).
	APIVersion string

	// Throttle is the shared per-shop budget controller. Sessions targeting
	// the same shop must share one instance; auto-created when nil.
	Throttle *throttle.Controller

	// Transport issues the HTTP requests (default: HTTPTransport with
	// transport-level retry).
	Transport transport.Transport

	// Cache optionally backs ExecuteCached. Nil disables caching.
	Cache *cache.Manager

	// MinBucket and MinSleep tune the auto-created throttle controller.
	// Ignored when Throttle is provided.
	MinBucket float64
	MinSleep  time.Duration

	// Retry governs in-client retries of THROTTLED responses.
	Retry RetryConfig
}

// Session holds per-shop state for the Admin GraphQL API. Apart from the
// throttle controller, which has its own locking, sessions are read-only
// after creation and safe to share across goroutines.
type Session struct {
	ShopURL     string
	AccessToken string
	APIVersion  string

	// GraphQLURL is the resolved endpoint:
	// {shop}/admin/api/{version}/graphql.json
	GraphQLURL string

	Throttle  *throttle.Controller
	Transport transport.Transport
	Cache     *cache.Manager

	retry  RetryConfig
	logger zerolog.Logger
}

// NewSession creates a session for one shop.
func NewSession(cfg Config) (*Session, error) {
	if cfg.ShopURL == "" {
		return nil, fmt.Errorf("shop URL is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	shopURL := strings.TrimRight(strings.TrimSpace(cfg.ShopURL), "/")
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	logger := logging.NewLogger("shopify-gql")

	controller := cfg.Throttle
	if controller == nil {
		controller = throttle.New(throttle.Config{
			MinBucket: cfg.MinBucket,
			MinSleep:  cfg.MinSleep,
		}, logging.NewLogger("throttle"))
	}

	tp := cfg.Transport
	if tp == nil {
		tp = transport.NewHTTPTransport(transport.DefaultConfig(), logging.NewLogger("transport"))
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}

	return &Session{
		ShopURL:     shopURL,
		AccessToken: cfg.AccessToken,
		APIVersion:  apiVersion,
		GraphQLURL:  fmt.Sprintf("%s/admin/api/%s/graphql.json", shopURL, apiVersion),
		Throttle:    controller,
		Transport:   tp,
		Cache:       cfg.Cache,
		retry:       retry,
		logger:      logger.With().Str("shop", shopURL).Logger(),
	}, nil
}

// headers builds the per-request header set.
func (s *Session) headers() map[string]string {
	return map[string]string{
		"X-Shopify-Access-Token": s.AccessToken,
		"Content-Type":           "application/json",
	}
}
