// Package cache stores intermediate pipeline results.
//
// # Overview
//
// Every pipeline stage (sample, path, render) can be expensive for large
// maps: the path search in particular may run for seconds. The [Cache]
// interface stores stage outputs as opaque bytes under keys produced by a
// [Keyer], so that a rerun with identical inputs skips the work.
//
// # Backends
//
//   - [NullCache]: stores nothing (the --no-cache flag)
//   - [FileCache]: one JSON file per entry under ~/.cache/roadreveal (CLI)
//   - [RedisCache]: shared cache for several server instances
//
// Wrap any backend with [Observe] to emit observability cache events.
//
// # Keys
//
// Keys are "<kind>:<sha256>" where the hash covers the input hash of the
// previous stage and every option that affects the output. Changing any
// option therefore changes the key; no explicit invalidation is needed.
package cache

import (
	"context"
	"time"
)

// Cache stores byte blobs by key.
//
// Implementations must be safe for concurrent use. A failing cache is never
// fatal to the pipeline: callers treat errors as misses.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per stage.
const (
	// TTLSample covers sampled grids. Sampling is deterministic, so entries
	// only expire to bound disk use.
	TTLSample = 30 * 24 * time.Hour

	// TTLPath covers built paths.
	TTLPath = 30 * 24 * time.Hour

	// TTLArtifact covers rendered output.
	TTLArtifact = 7 * 24 * time.Hour
)
