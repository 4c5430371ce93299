// File: internal/enumerate/enumerate_test.go
package enumerate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/listdrain/internal/exclusion"
	"github.com/xkilldash9x/listdrain/internal/surface"
)

func testTokens() Tokens {
	return Tokens{
		Actionable: NewTokenSet([]string{"following", "mengikuti"}),
		Reversed:   NewTokenSet([]string{"follow", "ikuti"}),
		Confirm:    NewTokenSet([]string{"unfollow", "berhenti mengikuti", "berhenti"}),
		Cancel:     NewTokenSet([]string{"cancel", "batal"}),
		Boundary:   NewTokenSet([]string{"suggested for you", "disarankan"}),
	}
}

func ctl(identity, label string) surface.Control {
	return surface.Control{
		Identity: identity,
		Label:    label,
		Box:      surface.Rect{X: 10, Y: 10, Width: 80, Height: 30},
		HasBox:   true,
	}
}

func TestTokenSetMatching(t *testing.T) {
	ts := NewTokenSet([]string{"Following", " mengikuti "})
	assert.True(t, ts.Matches("following"))
	assert.True(t, ts.Matches("  FOLLOWING  "))
	assert.True(t, ts.Matches("Mengikuti"))
	assert.False(t, ts.Matches("follow"))
	assert.False(t, ts.Matches(""))
}

func TestReversedDoesNotMatchActionable(t *testing.T) {
	tk := testTokens()
	// "Following" contains "follow"; the actionable state must win.
	assert.False(t, tk.IsReversed("Following"))
	assert.True(t, tk.IsReversed("Follow"))
	assert.True(t, tk.IsReversed("Ikuti"))
	assert.False(t, tk.IsReversed("Mengikuti"))
}

func TestConfirmExcludesCancel(t *testing.T) {
	tk := testTokens()
	assert.True(t, tk.IsConfirm("Unfollow"))
	assert.True(t, tk.IsConfirm("Berhenti Mengikuti"))
	assert.False(t, tk.IsConfirm("Cancel"))
	assert.False(t, tk.IsConfirm("Batal"))
}

func TestPassClassifiesAndFilters(t *testing.T) {
	e := New(testTokens(), exclusion.Set{"brand_abc": {}}, 20, zap.NewNop())
	snap := &surface.Snapshot{
		Scoped: true,
		Controls: []surface.Control{
			ctl("alice", "Following"),
			ctl("brand_abc", "Following"),
			ctl("bob", "Mengikuti"),
			ctl("carol", "Follow"),   // wrong state
			ctl("", "Following"),     // unresolved identity
			ctl("dave", "Message"),   // not a list control
		},
	}

	res := e.Pass(snap, map[string]struct{}{})

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "alice", res.Candidates[0].Identity)
	assert.Equal(t, "bob", res.Candidates[1].Identity)
	assert.Equal(t, []string{"brand_abc"}, res.Excluded)
	assert.Equal(t, 3, res.Actionable)
	assert.Equal(t, 1, res.Unresolved)
}

func TestPassUsesAriaFallback(t *testing.T) {
	e := New(testTokens(), exclusion.Set{}, 20, zap.NewNop())
	snap := &surface.Snapshot{Controls: []surface.Control{
		{Identity: "eve", Aria: "Following eve", HasBox: true},
	}}

	res := e.Pass(snap, map[string]struct{}{})
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "eve", res.Candidates[0].Identity)
}

func TestPassIgnoresProcessedSilently(t *testing.T) {
	e := New(testTokens(), exclusion.Set{"brand_abc": {}}, 20, zap.NewNop())
	snap := &surface.Snapshot{Controls: []surface.Control{
		ctl("alice", "Following"),
		ctl("brand_abc", "Following"),
	}}
	processed := map[string]struct{}{"alice": {}, "brand_abc": {}}

	res := e.Pass(snap, processed)
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.Excluded, "processed exclusions are not re-reported")
	assert.Equal(t, 2, res.Actionable)
}

func TestExcludedNeverBecomesCandidate(t *testing.T) {
	e := New(testTokens(), exclusion.Set{"brand_abc": {}}, 20, zap.NewNop())
	snap := &surface.Snapshot{Controls: []surface.Control{ctl("Brand_ABC", "Following")}}

	// However many passes run, the excluded identity never surfaces as a
	// candidate.
	processed := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		res := e.Pass(snap, processed)
		assert.Empty(t, res.Candidates)
		for _, id := range res.Excluded {
			processed[id] = struct{}{}
		}
	}
}

func TestBoundaryNeedsReversedFollower(t *testing.T) {
	e := New(testTokens(), exclusion.Set{}, 20, zap.NewNop())

	bare := &surface.Snapshot{Headings: []surface.Heading{
		{Text: "Suggested for you", Following: []string{"Following", "Message"}},
	}}
	_, found := e.Boundary(bare)
	assert.False(t, found, "a marker without reversed-state followers is not the boundary")

	real := &surface.Snapshot{Headings: []surface.Heading{
		{Text: "Disarankan untukmu", Following: []string{"Ikuti", "Ikuti"}},
	}}
	text, found := e.Boundary(real)
	assert.True(t, found)
	assert.Equal(t, "Disarankan untukmu", text)
}

func TestBoundaryHonorsLookahead(t *testing.T) {
	e := New(testTokens(), exclusion.Set{}, 2, zap.NewNop())
	snap := &surface.Snapshot{Headings: []surface.Heading{
		{Text: "Suggested for you", Following: []string{"Message", "Following", "Follow"}},
	}}
	_, found := e.Boundary(snap)
	assert.False(t, found, "the reversed control beyond the lookahead must not count")
}
