// Package cache provides content-addressed caching for augmentation
// pipeline results.
//
// Augmentation is deterministic given a pipeline definition, a seed, and
// an input, so results can be cached under a key derived from exactly
// those three things. The [Cache] interface abstracts the storage
// backend ([FileCache] for CLI usage, [RedisCache] for shared
// deployments, [NullCache] to disable caching); the [Keyer] interface
// owns key derivation so every entry point computes identical keys.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Default TTLs per entry class. Sample outputs are pure functions of
// their key, so they could live forever; the TTLs just bound disk usage.
const (
	// TTLSample is the lifetime of cached augmented samples.
	TTLSample = 30 * 24 * time.Hour

	// TTLHTTP is the lifetime of cached HTTP responses (remote inputs).
	TTLHTTP = 24 * time.Hour
)

// Cache stores opaque byte blobs under string keys with a TTL.
type Cache interface {
	// Get retrieves the value for key. The second return reports whether
	// the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SampleKeyOpts carries the per-sample parameters that must participate
// in a sample cache key.
type SampleKeyOpts struct {
	// Index is the sample's position within the run; it seeds the
	// per-sample generator, so it changes the output.
	Index int

	// Format is the output encoding (png, jpeg).
	Format string
}

// Keyer derives cache keys. Implementations must be pure: identical
// inputs yield identical keys across processes.
type Keyer interface {
	// SampleKey keys one augmented sample by the pipeline definition
	// hash, the run seed, the input content hash, and per-sample opts.
	SampleKey(pipelineHash string, seed uint64, inputHash string, opts SampleKeyOpts) string

	// HTTPKey keys a cached HTTP response within a namespace.
	HTTPKey(namespace, url string) string
}

// DefaultKeyer derives keys by hashing the JSON encoding of the key
// components, prefixed with the entry class.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SampleKey implements [Keyer].
func (DefaultKeyer) SampleKey(pipelineHash string, seed uint64, inputHash string, opts SampleKeyOpts) string {
	return hashKey("sample", pipelineHash, seed, inputHash, opts)
}

// HTTPKey implements [Keyer].
func (DefaultKeyer) HTTPKey(namespace, url string) string {
	return hashKey("http:"+namespace, url)
}

// ScopedKeyer prefixes every key from an inner keyer, isolating cache
// namespaces when several projects share one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner so all keys carry prefix. A nil inner uses
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SampleKey implements [Keyer].
func (k *ScopedKeyer) SampleKey(pipelineHash string, seed uint64, inputHash string, opts SampleKeyOpts) string {
	return k.prefix + k.inner.SampleKey(pipelineHash, seed, inputHash, opts)
}

// HTTPKey implements [Keyer].
func (k *ScopedKeyer) HTTPKey(namespace, url string) string {
	return k.prefix + k.inner.HTTPKey(namespace, url)
}

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes the SHA-256 hex digest of data. It is the content hash
// used for pipeline definitions and input bytes throughout the project.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
