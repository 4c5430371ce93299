// File: internal/executor/mocks_test.go
package executor

import (
	"context"

	"github.com/xkilldash9x/listdrain/internal/surface"
)

// fakeSurface is a scriptable surface for executor tests. Zero values mean
// "present and healthy"; tests flip fields to script failures.
type fakeSurface struct {
	// refreshLabels maps identity to the label returned by Refresh. A missing
	// key reports the control as gone.
	refreshLabels map[string]string
	// refreshAfter flips the label for an identity after N Refresh calls,
	// modeling a state change that lands mid-verification.
	refreshAfter map[string]refreshFlip
	refreshCalls map[string]int

	dialog   []surface.Control
	pageText string
	// pageTextAfterConfirm replaces pageText once both the primary and the
	// confirmation press have been dispatched, modeling a block indicator
	// that appears only after the action landed.
	pageTextAfterConfirm string

	events []surface.PointerEvent
	nudges []float64

	refreshErr  error
	dialogErr   error
	pageTextErr error
	dispatchErr error
}

type refreshFlip struct {
	after int
	label string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		refreshLabels: map[string]string{},
		refreshAfter:  map[string]refreshFlip{},
		refreshCalls:  map[string]int{},
	}
}

func (f *fakeSurface) Snapshot(ctx context.Context) (*surface.Snapshot, error) {
	return &surface.Snapshot{Scoped: true}, nil
}

func (f *fakeSurface) Refresh(ctx context.Context, identity string) (surface.Control, bool, error) {
	if f.refreshErr != nil {
		return surface.Control{}, false, f.refreshErr
	}
	f.refreshCalls[identity]++
	label, ok := f.refreshLabels[identity]
	if flip, has := f.refreshAfter[identity]; has && f.refreshCalls[identity] > flip.after {
		label, ok = flip.label, true
	}
	if !ok {
		return surface.Control{}, false, nil
	}
	return surface.Control{
		Identity: identity,
		Label:    label,
		Box:      surface.Rect{X: 300, Y: 200, Width: 90, Height: 32},
		HasBox:   true,
	}, true, nil
}

func (f *fakeSurface) DialogControls(ctx context.Context) ([]surface.Control, error) {
	if f.dialogErr != nil {
		return nil, f.dialogErr
	}
	return f.dialog, nil
}

func (f *fakeSurface) PageText(ctx context.Context) (string, error) {
	if f.pageTextErr != nil {
		return "", f.pageTextErr
	}
	if f.pageTextAfterConfirm != "" && f.countEvents(surface.PointerPress) >= 2 {
		return f.pageTextAfterConfirm, nil
	}
	return f.pageText, nil
}

func (f *fakeSurface) DispatchPointer(ctx context.Context, ev surface.PointerEvent) error {
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSurface) ScrollNudge(ctx context.Context, deltaY float64) error {
	f.nudges = append(f.nudges, deltaY)
	return nil
}

// countEvents tallies dispatched events by type.
func (f *fakeSurface) countEvents(t surface.PointerType) int {
	n := 0
	for _, ev := range f.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}
