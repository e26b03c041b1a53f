// Package cachestore is a small read-through cache used for expensive
// aggregations, like reviewer reputation profiles. Values are opaque
// strings (usually JSON); a miss is an empty string, not an error.
package cachestore

import (
	"context"
)

type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}
