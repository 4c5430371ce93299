// File: internal/engine/mocks_test.go
package engine

import (
	"context"
	"sync"

	"github.com/xkilldash9x/listdrain/internal/surface"
)

// row is one entry of the scripted list.
type row struct {
	identity string
	label    string
	box      surface.Rect
}

// scriptedSurface models a virtualized list for engine tests. Rows flip to
// the reversed state when a press lands on them and the confirmation button
// is pressed afterwards, like the real surface does.
type scriptedSurface struct {
	mu sync.Mutex

	rows       []*row
	headings   []surface.Heading
	totalLabel string
	pageText   string
	// pageTextAfterFlip becomes the page text the moment a confirmation
	// press flips a row, modeling a block thrown right after the action.
	pageTextAfterFlip string
	scoped            bool

	confirmBox surface.Rect

	// lastPressed remembers which row the latest press landed on, pending
	// the confirmation press.
	lastPressed *row

	nudges    []float64
	snapshots int
	presses   int

	snapshotErr error
}

func newScriptedSurface(identities ...string) *scriptedSurface {
	s := &scriptedSurface{
		scoped:     true,
		confirmBox: surface.Rect{X: 200, Y: 600, Width: 100, Height: 36},
	}
	for i, id := range identities {
		s.rows = append(s.rows, &row{
			identity: id,
			label:    "Following",
			box:      surface.Rect{X: 300, Y: float64(100 + 40*i), Width: 90, Height: 32},
		})
	}
	return s
}

func (s *scriptedSurface) Snapshot(ctx context.Context) (*surface.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return nil, s.snapshotErr
	}
	s.snapshots++
	snap := &surface.Snapshot{
		Scoped:     s.scoped,
		Rendered:   len(s.rows),
		Headings:   s.headings,
		TotalLabel: s.totalLabel,
	}
	for _, r := range s.rows {
		snap.Controls = append(snap.Controls, surface.Control{
			Identity: r.identity,
			Label:    r.label,
			Box:      r.box,
			HasBox:   true,
		})
	}
	return snap, nil
}

func (s *scriptedSurface) Refresh(ctx context.Context, identity string) (surface.Control, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.identity == identity {
			return surface.Control{
				Identity: r.identity,
				Label:    r.label,
				Box:      r.box,
				HasBox:   true,
			}, true, nil
		}
	}
	return surface.Control{}, false, nil
}

func (s *scriptedSurface) DialogControls(ctx context.Context) ([]surface.Control, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastPressed == nil {
		return nil, nil
	}
	return []surface.Control{
		{Label: "Cancel", Box: surface.Rect{X: 80, Y: 600, Width: 100, Height: 36}, HasBox: true},
		{Label: "Unfollow", Box: s.confirmBox, HasBox: true},
	}, nil
}

func (s *scriptedSurface) PageText(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageText, nil
}

func (s *scriptedSurface) DispatchPointer(ctx context.Context, ev surface.PointerEvent) error {
	if ev.Type != surface.PointerRelease {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presses++
	if contains(s.confirmBox, ev.X, ev.Y) {
		if s.lastPressed != nil {
			s.lastPressed.label = "Follow"
			s.lastPressed = nil
			if s.pageTextAfterFlip != "" {
				s.pageText = s.pageTextAfterFlip
			}
		}
		return nil
	}
	for _, r := range s.rows {
		if contains(r.box, ev.X, ev.Y) {
			s.lastPressed = r
			return nil
		}
	}
	return nil
}

func (s *scriptedSurface) ScrollNudge(ctx context.Context, deltaY float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nudges = append(s.nudges, deltaY)
	return nil
}

func contains(r surface.Rect, x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}
