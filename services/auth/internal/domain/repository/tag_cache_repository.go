package repository

import (
	"context"
	"time"
)

// TagCacheRepository caches values under keys grouped by tags so a whole
// group can be dropped at once. Every tag carries a version that
// InvalidateTag bumps; entries written against an older version are never
// stored or served.
type TagCacheRepository interface {
	// Get returns the entry under key, or a not-found error when it is
	// missing or older than the latest invalidation of tag.
	Get(ctx context.Context, key, tag string) (string, error)

	// Version returns the current invalidation counter of tag.
	Version(ctx context.Context, tag string) (int64, error)

	// SetIfVersion stores value under key and tag only while tag is still at
	// version. It reports false when tag was invalidated in between.
	SetIfVersion(ctx context.Context, key, value string, ttl time.Duration, tag string, version int64) (bool, error)

	// InvalidateTag bumps the version of tag and deletes its entries.
	InvalidateTag(ctx context.Context, tag string) error

	IsNotFound(err error) bool
}

// LeaseRepository hands out short exclusive leases keyed by name.
type LeaseRepository interface {
	// Acquire reports whether the caller took the lease. The lease frees
	// itself after ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
