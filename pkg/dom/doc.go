// Package dom models the element tree that triggers and popups live in.
//
// It is deliberately small: nodes with a DOM parent, an optional logical
// host, rectangles for hit testing, class and style attributes, and event
// listeners. Two parent relations exist on purpose:
//
//   - The DOM parent decides containment ([Node.Contains]) and hit testing.
//   - The logical parent ([Node.SetHost]) decides event propagation. A popup
//     mounted through a portal into the document body is still a logical child
//     of the element that owns it, so events inside it propagate to that
//     owner's ancestors the way component-tree events do.
//
// # Dispatch
//
// [Document.Dispatch] runs capture listeners from the logical root down to
// the target, bubble listeners back up, then document-level listeners unless
// propagation was stopped, and finally any functions registered with
// [Event.Defer]. mouseenter and mouseleave reach the target only.
//
// A Document and its nodes are not safe for concurrent use; drive them from
// a single loop.
package dom
