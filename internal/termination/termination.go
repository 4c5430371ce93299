// File: internal/termination/termination.go

// Package termination decides when the outer loop must stop and why. The
// list being drained is virtualized and effectively infinite; no single
// signal is reliable, so the detector composes several and reports whichever
// fired as a first-class reason, not a log line.
package termination

import (
	"go.uber.org/zap"
)

// Reason is the one-line explanation attached to every run stop. Callers
// must be able to distinguish cap stops from exhaustion from external
// signals, so each source has its own value.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonKillSwitch    Reason = "kill-switch triggered"
	ReasonCanceled      Reason = "context canceled"
	ReasonRunCap        Reason = "run cap reached"
	ReasonDailyCap      Reason = "daily cap reached"
	ReasonHourlyCap     Reason = "hourly cap reached"
	ReasonExpectedTotal Reason = "expected total processed"
	ReasonBoundary      Reason = "boundary marker reached"
	ReasonNoProgress    Reason = "no progress across consecutive rounds"
	ReasonRenderPlateau Reason = "rendered count plateaued"
	ReasonBlockDetected Reason = "block indicator detected"
	ReasonSurfaceFailed Reason = "surface failure"
	ReasonSetupFailed   Reason = "setup failed"
)

// Observation is what one outer-loop iteration reports to the detector.
type Observation struct {
	// Processed is the cumulative size of the processed-identity set.
	Processed int
	// Acted is true when at least one action completed this round.
	Acted bool
	// Rendered is the raw rendered-control count from the snapshot; pass a
	// negative value when the snapshot itself failed.
	Rendered int
	// BoundaryFound is true when the confirmed boundary marker was seen.
	BoundaryFound bool
	// BoundaryText carries the marker heading for logging.
	BoundaryText string
}

// Detector accumulates per-round observations. Single-goroutine use only.
type Detector struct {
	maxNoProgress int
	log           *zap.Logger

	expectedTotal   int64
	hasExpected     bool
	lastProcessed   int
	noProgressRound int
	lastRendered    int
	plateauRounds   int
}

// New creates a Detector. maxNoProgress bounds both the no-progress and the
// rendered-plateau counters.
func New(maxNoProgress int, logger *zap.Logger) *Detector {
	return &Detector{
		maxNoProgress: maxNoProgress,
		log:           logger.Named("termination"),
		lastRendered:  -1,
	}
}

// SetExpectedTotal arms the expected-total condition once the header count
// has been parsed. Safe to call at most once; later calls are ignored.
func (d *Detector) SetExpectedTotal(total int64) {
	if d.hasExpected || total <= 0 {
		return
	}
	d.expectedTotal = total
	d.hasExpected = true
	d.log.Info("Expected total armed", zap.Int64("total", total))
}

// ExpectedTotal returns the armed total and whether one is known.
func (d *Detector) ExpectedTotal() (int64, bool) {
	return d.expectedTotal, d.hasExpected
}

// Observe folds in one round and reports whether the loop must stop.
func (d *Detector) Observe(obs Observation) (Reason, bool) {
	// Expected-total: protects against the list recycling stale entries
	// once every real one was processed.
	if d.hasExpected && int64(obs.Processed) >= d.expectedTotal {
		d.log.Info("Processed as many identities as the reported total",
			zap.Int("processed", obs.Processed), zap.Int64("expected", d.expectedTotal))
		return ReasonExpectedTotal, true
	}

	if obs.BoundaryFound {
		d.log.Info("Boundary marker confirmed", zap.String("heading", obs.BoundaryText))
		return ReasonBoundary, true
	}

	// No-progress stall: nothing new processed and nothing acted on, round
	// after round (e.g. everything still rendered is excluded).
	if obs.Processed == d.lastProcessed && !obs.Acted {
		d.noProgressRound++
	} else {
		d.noProgressRound = 0
	}
	d.lastProcessed = obs.Processed
	if d.noProgressRound >= d.maxNoProgress {
		d.log.Info("No progress across consecutive rounds", zap.Int("rounds", d.noProgressRound))
		return ReasonNoProgress, true
	}

	// Rendered-count plateau: scroll nudges stopped producing new elements.
	if obs.Rendered >= 0 && obs.Rendered == d.lastRendered && !obs.Acted {
		d.plateauRounds++
	} else {
		d.plateauRounds = 0
	}
	if obs.Rendered >= 0 {
		d.lastRendered = obs.Rendered
	}
	if d.plateauRounds >= d.maxNoProgress {
		d.log.Info("Rendered control count plateaued",
			zap.Int("rendered", obs.Rendered), zap.Int("rounds", d.plateauRounds))
		return ReasonRenderPlateau, true
	}

	return ReasonNone, false
}
