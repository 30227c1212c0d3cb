// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about object walks, graph exports, and the inspection server.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the walker and the
// exporters never import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWalkHooks(metrics.NewWalkHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Walk().OnWalkStart(ctx, root, typeName)
//	// ... walk ...
//	observability.Walk().OnWalkComplete(ctx, objects, connections, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Walk Hooks
// =============================================================================

// WalkHooks receives events from the object walker.
type WalkHooks interface {
	// OnWalkStart records the beginning of a walk from a root object.
	OnWalkStart(ctx context.Context, root uint64, typeName string)

	// OnObjectVisited records a newly discovered object.
	OnObjectVisited(ctx context.Context, typeName string, members int)

	// OnAlias records a pointer into an object that was already visited.
	OnAlias(ctx context.Context)

	// OnWalkComplete records the end of a walk. err is nil on success.
	OnWalkComplete(ctx context.Context, objects, connections int, duration time.Duration, err error)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from graph exporters.
type ExportHooks interface {
	OnExportStart(ctx context.Context, format string, nodeCount int)
	OnExportComplete(ctx context.Context, format string, bytes int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the inspection server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopWalkHooks is a no-op implementation of WalkHooks.
type NoopWalkHooks struct{}

func (NoopWalkHooks) OnWalkStart(context.Context, uint64, string)                    {}
func (NoopWalkHooks) OnObjectVisited(context.Context, string, int)                   {}
func (NoopWalkHooks) OnAlias(context.Context)                                        {}
func (NoopWalkHooks) OnWalkComplete(context.Context, int, int, time.Duration, error) {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int)                          {}
func (NoopExportHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	walkHooks   WalkHooks   = NoopWalkHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetWalkHooks registers custom walk hooks.
// This should be called once at application startup before any walk.
func SetWalkHooks(h WalkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		walkHooks = h
	}
}

// SetExportHooks registers custom export hooks.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Walk returns the registered walk hooks.
func Walk() WalkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return walkHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	walkHooks = NoopWalkHooks{}
	exportHooks = NoopExportHooks{}
	httpHooks = NoopHTTPHooks{}
}
