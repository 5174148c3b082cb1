// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about pipeline applications and
// cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces per event category
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the
// library packages free of observability-framework imports and avoids
// import cycles.
//
// # Usage
//
//	func main() {
//	    observability.SetApplyHooks(&myApplyHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Apply().OnRunStart(ctx, pipelineHash, samples)
//	// ... augment ...
//	observability.Apply().OnRunComplete(ctx, pipelineHash, samples, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ApplyHooks receives events from augmentation runs.
type ApplyHooks interface {
	// OnRunStart records the start of a pipeline run over a batch.
	OnRunStart(ctx context.Context, pipelineHash string, samples int)

	// OnRunComplete records the end of a run.
	OnRunComplete(ctx context.Context, pipelineHash string, samples int, duration time.Duration, err error)

	// OnSampleComplete records one sample finishing, cached or computed.
	OnSampleComplete(ctx context.Context, pipelineHash string, index int, cached bool, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopApplyHooks is a no-op implementation of ApplyHooks.
type NoopApplyHooks struct{}

func (NoopApplyHooks) OnRunStart(context.Context, string, int) {}
func (NoopApplyHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopApplyHooks) OnSampleComplete(context.Context, string, int, bool, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	applyHooks ApplyHooks = NoopApplyHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetApplyHooks registers custom apply hooks. Call once at application
// startup before running pipelines.
func SetApplyHooks(h ApplyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		applyHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Call once at application
// startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Apply returns the registered apply hooks.
func Apply() ApplyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return applyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults. Primarily useful for
// testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	applyHooks = NoopApplyHooks{}
	cacheHooks = NoopCacheHooks{}
}
