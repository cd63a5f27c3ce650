// Package cache provides the read-through entity cache used by the catalog
// services. Cache failures are logged and treated as misses; they never fail
// a request.
package cache

import "context"

const keyPrefix = "storefront:"

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the cached value for key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool

	// Set stores value under key.
	Set(ctx context.Context, key string, value any)

	// Delete evicts keys.
	Delete(ctx context.Context, keys ...string)
}

// BrandKey is the cache key of a brand.
func BrandKey(id string) string { return keyPrefix + "brand:" + id }

// ProductKey is the cache key of a product.
func ProductKey(id string) string { return keyPrefix + "product:" + id }

// Noop is a Cache that never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool { return false }
func (Noop) Set(context.Context, string, any) {}
func (Noop) Delete(context.Context, ...string) {}
