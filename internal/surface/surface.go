// File: internal/surface/surface.go

// Package surface defines the abstract UI surface the engine drives. The
// engine never sees selectors or site markup; it sees rendered controls with
// labels, resolved identities and screen boxes, plus low-level pointer and
// scroll primitives. Concrete adapters (the chromedp one under cdp/, fakes
// in tests) supply the rest.
package surface

import "context"

// Rect is a screen-space bounding box.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Control is one rendered candidate control. Identity is empty when the
// adapter could not resolve an identity-bearing link for it. Boxes are only
// valid at snapshot time; re-read them through Refresh before interacting.
type Control struct {
	Identity string
	Label    string
	Aria     string
	Box      Rect
	HasBox   bool
}

// Text returns the label, falling back to the accessible name.
func (c Control) Text() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Aria
}

// Heading is a section heading rendered within the scope, together with the
// labels of up to a bounded number of controls that follow it in document
// order. The termination detector uses these to recognize the boundary
// between the real list and a trailing suggestions section.
type Heading struct {
	Text      string
	Following []string
}

// Snapshot is one enumeration pass over the currently rendered scope.
type Snapshot struct {
	// Scoped is false when the scoping container was not found and the
	// adapter fell back to whole-document enumeration (degraded mode).
	Scoped bool
	// Controls lists the rendered candidate controls in document order.
	Controls []Control
	// Rendered is the raw count of control elements in scope, before any
	// classification; the plateau detector watches it.
	Rendered int
	// Headings lists section headings with bounded lookahead.
	Headings []Heading
	// TotalLabel is the raw text of the overall count indicator, "" when
	// not found.
	TotalLabel string
}

// PointerType enumerates the low-level pointer events. Values align with
// DOM/CDP event type strings.
type PointerType string

const (
	PointerMove    PointerType = "mouseMoved"
	PointerPress   PointerType = "mousePressed"
	PointerRelease PointerType = "mouseReleased"
	PointerWheel   PointerType = "mouseWheel"
)

// PointerEvent is a single low-level pointer event.
type PointerEvent struct {
	Type       PointerType
	X          float64
	Y          float64
	Button     string
	ClickCount int
	DeltaY     float64
}

// Surface is the complete capability set the engine needs from a UI.
// Implementations must be safe for sequential use from a single goroutine;
// the engine never calls them concurrently.
type Surface interface {
	// Snapshot enumerates the currently rendered scope.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Refresh re-reads a single control by identity, returning ok=false when
	// it is no longer rendered. Always call this immediately before
	// interacting; boxes from an earlier snapshot are stale after any scroll.
	Refresh(ctx context.Context, identity string) (Control, bool, error)

	// DialogControls enumerates controls document-wide, for locating the
	// confirmation dialog's buttons (which render outside the list scope).
	DialogControls(ctx context.Context) ([]Control, error)

	// PageText returns the page's visible text for block-phrase scanning.
	PageText(ctx context.Context) (string, error)

	// DispatchPointer issues one low-level pointer event.
	DispatchPointer(ctx context.Context, ev PointerEvent) error

	// ScrollNudge wheels the scope container by deltaY to coax the
	// virtualized list into rendering more entries.
	ScrollNudge(ctx context.Context, deltaY float64) error
}
