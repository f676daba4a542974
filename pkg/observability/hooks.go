// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about visibility transitions, document arbitration and
// popup container resolution.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are invoked synchronously from interaction handlers, so
// implementations must return quickly and must not call back into the
// trigger that reported the event.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetVisibilityHooks(&myVisibilityHooks{})
//	    observability.SetArbitrationHooks(&myArbitrationHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Visibility().OnRequest(id, true, delay)
//	// ... timer fires ...
//	observability.Visibility().OnSettle(id, true, false)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Visibility Hooks
// =============================================================================

// VisibilityHooks receives events from per-instance visibility state machines.
type VisibilityHooks interface {
	// OnRequest records a show/hide request and the delay it was scheduled with.
	OnRequest(id string, show bool, delay time.Duration)

	// OnSettle records a settled transition into visible or hidden.
	OnSettle(id string, visible, controlled bool)

	// OnCancel records a pending transition that was dropped, either by a
	// conflicting request or by destruction.
	OnCancel(id string)
}

// =============================================================================
// Arbitration Hooks
// =============================================================================

// ArbitrationHooks receives events from the document event arbitrator.
type ArbitrationHooks interface {
	// OnDispatch records one arbitration pass over the registry.
	OnDispatch(class string, participants int)

	// OnDismiss records an instance asked to close by the pass.
	OnDismiss(id, class string)

	// OnKeep records an instance spared by the pass and why.
	OnKeep(id, class, reason string)
}

// =============================================================================
// Container Hooks
// =============================================================================

// ContainerHooks receives events from popup container resolution.
type ContainerHooks interface {
	// OnDefer records a resolution postponed until the trigger element exists.
	OnDefer(id string)

	// OnResolve records a resolved container and how many times the
	// container source was invoked so far.
	OnResolve(id string, calls int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopVisibilityHooks is a no-op implementation of VisibilityHooks.
type NoopVisibilityHooks struct{}

func (NoopVisibilityHooks) OnRequest(string, bool, time.Duration) {}
func (NoopVisibilityHooks) OnSettle(string, bool, bool)           {}
func (NoopVisibilityHooks) OnCancel(string)                       {}

// NoopArbitrationHooks is a no-op implementation of ArbitrationHooks.
type NoopArbitrationHooks struct{}

func (NoopArbitrationHooks) OnDispatch(string, int)        {}
func (NoopArbitrationHooks) OnDismiss(string, string)      {}
func (NoopArbitrationHooks) OnKeep(string, string, string) {}

// NoopContainerHooks is a no-op implementation of ContainerHooks.
type NoopContainerHooks struct{}

func (NoopContainerHooks) OnDefer(string)        {}
func (NoopContainerHooks) OnResolve(string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	visibilityHooks  VisibilityHooks  = NoopVisibilityHooks{}
	arbitrationHooks ArbitrationHooks = NoopArbitrationHooks{}
	containerHooks   ContainerHooks   = NoopContainerHooks{}
	hooksMu          sync.RWMutex
)

// SetVisibilityHooks registers custom visibility hooks.
// This should be called once at application startup before any trigger mounts.
func SetVisibilityHooks(h VisibilityHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		visibilityHooks = h
	}
}

// SetArbitrationHooks registers custom arbitration hooks.
func SetArbitrationHooks(h ArbitrationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		arbitrationHooks = h
	}
}

// SetContainerHooks registers custom container hooks.
func SetContainerHooks(h ContainerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		containerHooks = h
	}
}

// Visibility returns the registered visibility hooks.
func Visibility() VisibilityHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return visibilityHooks
}

// Arbitration returns the registered arbitration hooks.
func Arbitration() ArbitrationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return arbitrationHooks
}

// Container returns the registered container hooks.
func Container() ContainerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return containerHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	visibilityHooks = NoopVisibilityHooks{}
	arbitrationHooks = NoopArbitrationHooks{}
	containerHooks = NoopContainerHooks{}
}
