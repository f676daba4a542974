// Package lifecycle decides whether popup content and its portal exist.
package lifecycle

import "github.com/matzehuels/overlay/pkg/visibility"

// Decision is what should be in the tree for a given state.
type Decision struct {
	// Portal reports whether the portal wrapper is attached.
	Portal bool

	// Content reports whether the popup content is mounted.
	Content bool

	// Hidden reports whether mounted content is currently hidden.
	Hidden bool
}

// Controller layers mount and destroy rules on top of visibility. None of
// its knobs affect which transitions are valid.
type Controller struct {
	// ForceRender mounts content at creation and keeps it for the
	// controller's lifetime.
	ForceRender bool

	// DestroyOnHide unmounts content while hidden.
	DestroyOnHide bool

	// AutoDestroy unmounts content and removes the portal while hidden.
	AutoDestroy bool

	everShown bool
}

// Decide returns the mount decision for state. Pending states render as the
// side they are leaving.
func (c *Controller) Decide(state visibility.State) Decision {
	if state.Shown() {
		c.everShown = true
		return Decision{Portal: true, Content: true}
	}
	content := c.ForceRender || (c.everShown && !c.DestroyOnHide && !c.AutoDestroy)
	return Decision{
		Portal:  content || (c.everShown && !c.AutoDestroy),
		Content: content,
		Hidden:  content,
	}
}

// EverShown reports whether the popup has been shown at least once.
func (c *Controller) EverShown() bool { return c.everShown }
