// Package cache provides the byte caches used to avoid re-decoding image
// headers on every import.
//
// Probing an image for its pixel dimensions means opening and partially
// decoding the file. A batch import probes each source once for its
// orientation and again for placement, and a re-run over the same folder
// probes everything again. The cache stores the probed dimensions keyed by
// file identity (path, size and modification time), so an edited file is
// never served stale dimensions.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server or several
//     workstations importing from the same share
//   - [NullCache]: stores nothing
//
// All backends implement [Cache].
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing. The CLI uses it for --no-cache.
type NullCache struct{}

// NewNullCache returns a cache where every Get misses.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
