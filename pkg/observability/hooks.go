// Package observability provides hooks for metrics and tracing.
//
// The solver and search packages emit events through small hook interfaces
// instead of importing a metrics backend. Main registers a concrete
// implementation (see package metrics) at startup; libraries and tests run
// against the no-op defaults.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSolverHooks(recorder)
//	    observability.SetSearchHooks(recorder)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	sol, err := solver.Solve(ctx, dist, weights, p)
//	observability.Solver().OnSolve(ctx, string(solver.Kind()), n, p, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the experiment runner.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, region string)
	OnLoadComplete(ctx context.Context, region string, vertices, edges int, duration time.Duration, err error)

	// Distance matrix events; cached reports whether the base matrix came
	// from the cache.
	OnDistances(ctx context.Context, n int, cached bool, duration time.Duration)
}

// =============================================================================
// Solver Hooks
// =============================================================================

// SolverHooks receives events from p-median solves.
type SolverHooks interface {
	// OnSolve records one completed solve attempt.
	OnSolve(ctx context.Context, strategy string, n, p int, duration time.Duration, err error)
}

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from the threshold search loops.
type SearchHooks interface {
	// OnStep records one evaluated elongation scale.
	OnStep(ctx context.Context, mode string, k float64, changed bool)

	// OnComplete records the end of a search procedure.
	OnComplete(ctx context.Context, mode string, steps, changes int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnDistances(context.Context, int, bool, time.Duration) {}

// NoopSolverHooks is a no-op implementation of SolverHooks.
type NoopSolverHooks struct{}

func (NoopSolverHooks) OnSolve(context.Context, string, int, int, time.Duration, error) {}

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnStep(context.Context, string, float64, bool)                {}
func (NoopSearchHooks) OnComplete(context.Context, string, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	solverHooks   SolverHooks   = NoopSolverHooks{}
	searchHooks   SearchHooks   = NoopSearchHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetSolverHooks registers custom solver hooks.
func SetSolverHooks(h SolverHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		solverHooks = h
	}
}

// SetSearchHooks registers custom search hooks.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Solver returns the registered solver hooks.
func Solver() SolverHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return solverHooks
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	solverHooks = NoopSolverHooks{}
	searchHooks = NoopSearchHooks{}
	cacheHooks = NoopCacheHooks{}
}
