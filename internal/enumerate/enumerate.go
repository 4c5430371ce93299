// File: internal/enumerate/enumerate.go

// Package enumerate classifies the controls of a surface snapshot into
// actionable targets, applies the exclusion filter, deduplicates against the
// run's processed set, and recognizes the boundary marker that ends the real
// list. It is pure over its inputs; all surface I/O happens upstream.
package enumerate

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/listdrain/internal/exclusion"
	"github.com/xkilldash9x/listdrain/internal/surface"
)

// Candidate is an actionable, unexcluded, not-yet-processed target in
// rendering order.
type Candidate struct {
	Identity string
	Label    string
	Box      surface.Rect
	HasBox   bool
}

// PassResult summarizes one enumeration pass.
type PassResult struct {
	// Candidates are ready for action, in document order.
	Candidates []Candidate
	// Excluded lists identities newly skipped via the exclusion set this
	// pass (already-processed ones are ignored silently).
	Excluded []string
	// Actionable counts all rendered actionable controls, processed or not.
	Actionable int
	// Unresolved counts actionable controls with no resolvable identity.
	Unresolved int
}

// Enumerator owns the token sets and exclusion rules for a run.
type Enumerator struct {
	tokens     Tokens
	exclusions exclusion.Set
	lookahead  int
	log        *zap.Logger
}

// New creates an Enumerator. lookahead bounds how many trailing control
// labels per heading participate in boundary confirmation.
func New(tokens Tokens, exclusions exclusion.Set, lookahead int, logger *zap.Logger) *Enumerator {
	return &Enumerator{
		tokens:     tokens,
		exclusions: exclusions,
		lookahead:  lookahead,
		log:        logger.Named("enumerate"),
	}
}

// Pass classifies a snapshot against the processed set. It does not mutate
// processed; the engine owns run state transitions.
func (e *Enumerator) Pass(snap *surface.Snapshot, processed map[string]struct{}) PassResult {
	var res PassResult

	for _, c := range snap.Controls {
		if !e.tokens.IsActionable(c.Label, c.Aria) {
			continue
		}
		res.Actionable++

		if c.Identity == "" {
			res.Unresolved++
			e.log.Debug("Actionable control without resolvable identity; skipping",
				zap.String("label", c.Label))
			continue
		}

		id := exclusion.Normalize(c.Identity)
		if _, done := processed[id]; done {
			continue // already handled this run
		}

		if e.exclusions.Contains(id) {
			res.Excluded = append(res.Excluded, id)
			continue
		}

		res.Candidates = append(res.Candidates, Candidate{
			Identity: id,
			Label:    c.Label,
			Box:      c.Box,
			HasBox:   c.HasBox,
		})
	}

	return res
}

// Boundary scans the snapshot's headings for the boundary marker: a heading
// matching the boundary tokens followed, within the lookahead, by at least
// one control in the reversed state. The double condition avoids false
// positives from a heading that merely mentions the keyword.
func (e *Enumerator) Boundary(snap *surface.Snapshot) (string, bool) {
	for _, h := range snap.Headings {
		if !e.tokens.Boundary.Matches(h.Text) {
			continue
		}
		following := h.Following
		if e.lookahead > 0 && len(following) > e.lookahead {
			following = following[:e.lookahead]
		}
		for _, label := range following {
			if e.tokens.IsReversed(label) {
				return h.Text, true
			}
		}
	}
	return "", false
}

// Tokens exposes the enumerator's token sets to collaborating components
// (the executor shares the same confirm/reversed vocabulary).
func (e *Enumerator) Tokens() Tokens { return e.tokens }
