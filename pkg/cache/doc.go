// Package cache provides Redis-backed caching of Shopify GraphQL query
// results.
//
// Shopify's Admin API sends no cache headers, so unlike a REST response
// cache there is nothing to negotiate with the server: the caller decides
// which queries are safe to cache and for how long. Cached hits bypass the
// network entirely and therefore cost no throttle budget.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		Shop:      "https://my-store.myshopify.com",
//		Query:     productQuery,
//		Variables: map[string]any{"first": 50},
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - execute the query
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - shopify_gql_cache_hits_total{layer="redis"} - Cache hits
//   - shopify_gql_cache_misses_total - Cache misses
//   - shopify_gql_cache_size_bytes{layer="redis"} - Cache size
//   - shopify_gql_cache_errors_total{operation} - Cache operation errors
//
// Keys are deterministic: SHA-256 over the query document plus the
// JSON-canonicalized variables, namespaced by shop host. Two sessions
// issuing the same query with semantically equal variables share entries.
package cache
