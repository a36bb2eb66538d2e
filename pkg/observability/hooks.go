// Package observability provides hooks for capture, compositing, and cache
// events.
//
// Library packages never log. They emit events through hooks so the
// application decides where those events go (a charm logger in the CLI, a
// recorder in tests, nothing at all by default).
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCaptureHooks(&myCaptureHooks{})
//	    observability.SetComposeHooks(&myComposeHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Compose().OnComposeStart(ctx, layoutID, photos)
//	// ... render ...
//	observability.Compose().OnComposeComplete(ctx, layoutID, size, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Capture Hooks
// =============================================================================

// CaptureHooks receives events from the capture sequencer.
//
// Capture events originate from a synchronous state machine driven by timer
// and user events, so they carry no request context.
type CaptureHooks interface {
	// OnPhase records a phase transition.
	OnPhase(from, to string)

	// OnCountdown records the remaining seconds before the shutter for a slot.
	OnCountdown(slot, remaining int)

	// OnCapture records one snapshot attempt. id is empty when err is set.
	OnCapture(slot int, id string, err error)

	// OnReset records a hard reset of the slot collection.
	OnReset(reason string, capacity int)
}

// =============================================================================
// Compose Hooks
// =============================================================================

// ComposeHooks receives events from the compositor.
type ComposeHooks interface {
	// OnComposeStart records the start of a render pass.
	OnComposeStart(ctx context.Context, layoutID string, photos int)

	// OnComposeComplete records the end of a render pass with the encoded size.
	OnComposeComplete(ctx context.Context, layoutID string, size int, duration time.Duration, err error)

	// OnDecorationFailure records a decoration that was skipped.
	OnDecorationFailure(ctx context.Context, kind, ref string, err error)
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

// NoopCaptureHooks is a no-op implementation of CaptureHooks.
type NoopCaptureHooks struct{}

func (NoopCaptureHooks) OnPhase(string, string)       {}
func (NoopCaptureHooks) OnCountdown(int, int)         {}
func (NoopCaptureHooks) OnCapture(int, string, error) {}
func (NoopCaptureHooks) OnReset(string, int)          {}

// NoopComposeHooks is a no-op implementation of ComposeHooks.
type NoopComposeHooks struct{}

func (NoopComposeHooks) OnComposeStart(context.Context, string, int) {}
func (NoopComposeHooks) OnComposeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopComposeHooks) OnDecorationFailure(context.Context, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	captureHooks CaptureHooks = NoopCaptureHooks{}
	composeHooks ComposeHooks = NoopComposeHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetCaptureHooks registers custom capture hooks.
// This should be called once at application startup before any sequencer is built.
func SetCaptureHooks(h CaptureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		captureHooks = h
	}
}

// SetComposeHooks registers custom compose hooks.
func SetComposeHooks(h ComposeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		composeHooks = h
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

// Capture returns the registered capture hooks.
func Capture() CaptureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return captureHooks
}

// Compose returns the registered compose hooks.
func Compose() ComposeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return composeHooks
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
	captureHooks = NoopCaptureHooks{}
	composeHooks = NoopComposeHooks{}
	cacheHooks = NoopCacheHooks{}
}
