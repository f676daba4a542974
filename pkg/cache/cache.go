// Package cache stores rendered artifacts keyed by their inputs.
//
// The server keeps rendered scenario graphs here so repeated requests for
// the same scenario skip the graphviz render. Three backends share the
// [Cache] interface: [Memory] for a single process, [FileCache] for reuse
// across restarts and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts stay valid.
const DefaultTTL = time.Hour

// Cache is a byte store with per-entry expiry. A ttl of zero never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GraphKey is the key of a scenario graph rendered from body in format.
// run distinguishes graphs marked with run state from declared-only ones.
func GraphKey(body []byte, format string, run bool) string {
	return hashKey("graph", Hash(body), format, run)
}
