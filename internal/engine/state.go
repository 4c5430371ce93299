// File: internal/engine/state.go
package engine

// RunState is the in-memory record of one run. The processed set is a strict
// superset of both rosters; an identity lands there the moment any decision
// about it is made, so later enumeration passes can never resurface it.
type RunState struct {
	processed map[string]struct{}
	actioned  []string
	skipped   []string
}

func newRunState() *RunState {
	return &RunState{processed: make(map[string]struct{})}
}

// MarkActioned records an identity as acted on.
func (s *RunState) MarkActioned(identity string) {
	s.processed[identity] = struct{}{}
	s.actioned = append(s.actioned, identity)
}

// MarkSkipped records an identity as seen but not acted on (excluded, gone,
// or failed).
func (s *RunState) MarkSkipped(identity string) {
	s.processed[identity] = struct{}{}
	s.skipped = append(s.skipped, identity)
}

// ProcessedCount returns the size of the processed set.
func (s *RunState) ProcessedCount() int { return len(s.processed) }

// ProcessedSet exposes the set for enumeration passes. Callers must not
// mutate it.
func (s *RunState) ProcessedSet() map[string]struct{} { return s.processed }

// Actioned returns the acted-on roster in action order.
func (s *RunState) Actioned() []string { return s.actioned }

// Skipped returns the skipped roster in decision order.
func (s *RunState) Skipped() []string { return s.skipped }
