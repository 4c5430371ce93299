// File: internal/engine/engine.go

// Package engine runs the outer drain loop: gate on the kill switch and the
// rate budgets, snapshot the surface, enumerate targets, act on them one at a
// time with randomized pacing, nudge the virtualized list forward, and stop
// the moment any termination condition fires. The loop is deliberately
// single-threaded; pacing is the product, not an overhead to parallelize
// away.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/listdrain/internal/config"
	"github.com/xkilldash9x/listdrain/internal/countparse"
	"github.com/xkilldash9x/listdrain/internal/enumerate"
	"github.com/xkilldash9x/listdrain/internal/executor"
	"github.com/xkilldash9x/listdrain/internal/governor"
	"github.com/xkilldash9x/listdrain/internal/killswitch"
	"github.com/xkilldash9x/listdrain/internal/statestore"
	"github.com/xkilldash9x/listdrain/internal/surface"
	"github.com/xkilldash9x/listdrain/internal/termination"
)

// Scroll nudges vary within this band so consecutive rounds never scroll by
// the same amount.
const (
	scrollDeltaMin = 280.0
	scrollDeltaMax = 520.0
)

// Report is the final accounting of a run.
type Report struct {
	RunID       string
	Reason      termination.Reason
	BlockPhrase string
	Simulated   bool
	Actioned    []string
	Skipped     []string
	ActionCount int
	Processed   int
	Lifetime    int64
	Elapsed     time.Duration
}

// Deps bundles the engine's collaborators. Tests swap in fakes; production
// wiring happens in the command layer.
type Deps struct {
	Surface    surface.Surface
	Enumerator *enumerate.Enumerator
	Executor   *executor.Executor
	Governor   *governor.Governor
	Store      *statestore.Store
	Detector   *termination.Detector
	Sentinel   *killswitch.Sentinel
}

// Engine owns one run. Create a fresh Engine per run.
type Engine struct {
	cfg   *config.Config
	deps  Deps
	rng   *rand.Rand
	log   *zap.Logger
	runID string
	state *RunState
}

// New creates an Engine. The rng is shared with the motion synthesizer and
// executor so a seeded run replays end to end.
func New(cfg *config.Config, deps Deps, rng *rand.Rand, logger *zap.Logger) *Engine {
	runID := uuid.NewString()
	return &Engine{
		cfg:   cfg,
		deps:  deps,
		rng:   rng,
		log:   logger.Named("engine").With(zap.String("run_id", runID)),
		runID: runID,
		state: newRunState(),
	}
}

// Run executes the drain loop until a termination condition fires. The
// returned report is always non-nil; the error is non-nil only for surface or
// context failures that ended the run abnormally.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	e.log.Info("Run starting",
		zap.Bool("simulate", e.cfg.Run.Simulate),
		zap.Int("max_actions_per_run", e.cfg.Limits.MaxActionsPerRun),
	)

	reason, phrase, err := e.loop(ctx)
	report := e.report(reason, phrase, started)
	e.logSummary(report)
	return report, err
}

func (e *Engine) loop(ctx context.Context) (termination.Reason, string, error) {
	for {
		if e.deps.Sentinel.Triggered() {
			return termination.ReasonKillSwitch, "", nil
		}
		if ctx.Err() != nil {
			return termination.ReasonCanceled, "", ctx.Err()
		}
		if dec := e.deps.Governor.Check(); !dec.Allowed {
			return denialReason(dec.Denial), "", nil
		}

		snap, err := e.deps.Surface.Snapshot(ctx)
		if err != nil {
			e.log.Warn("Snapshot failed", zap.Error(err))
			if ctx.Err() != nil {
				return termination.ReasonCanceled, "", ctx.Err()
			}
			// Feed the detector a failed round; a persistently dead surface
			// ends the run through the no-progress counter.
			if reason, stop := e.deps.Detector.Observe(termination.Observation{
				Processed: e.state.ProcessedCount(),
				Rendered:  -1,
			}); stop {
				return reason, "", nil
			}
			if stopped, werr := e.pause(ctx, e.cfg.Delays.ScrollSettle); werr != nil {
				return termination.ReasonCanceled, "", werr
			} else if stopped {
				return termination.ReasonKillSwitch, "", nil
			}
			continue
		}

		if snap.TotalLabel != "" {
			if total, ok := countparse.Parse(snap.TotalLabel); ok {
				e.deps.Detector.SetExpectedTotal(total)
			}
		}
		if !snap.Scoped {
			e.log.Warn("Scope container not found; enumerating the whole document")
		}

		pass := e.deps.Enumerator.Pass(snap, e.state.ProcessedSet())
		for _, id := range pass.Excluded {
			e.log.Info("Skipping excluded identity", zap.String("identity", id))
			e.state.MarkSkipped(id)
		}

		acted, reason, phrase, err := e.actOnBatch(ctx, pass.Candidates)
		if err != nil || reason != termination.ReasonNone {
			return reason, phrase, err
		}

		delta := scrollDeltaMin + e.rng.Float64()*(scrollDeltaMax-scrollDeltaMin)
		if err := e.deps.Surface.ScrollNudge(ctx, delta); err != nil {
			e.log.Warn("Scroll nudge failed", zap.Error(err))
		}
		if stopped, werr := e.pause(ctx, e.cfg.Delays.ScrollSettle); werr != nil {
			return termination.ReasonCanceled, "", werr
		} else if stopped {
			return termination.ReasonKillSwitch, "", nil
		}

		boundaryText, boundaryFound := e.deps.Enumerator.Boundary(snap)
		if reason, stop := e.deps.Detector.Observe(termination.Observation{
			Processed:     e.state.ProcessedCount(),
			Acted:         acted,
			Rendered:      snap.Rendered,
			BoundaryFound: boundaryFound,
			BoundaryText:  boundaryText,
		}); stop {
			return reason, "", nil
		}
	}
}

// actOnBatch works through one pass's candidates. It re-checks the kill
// switch and the budgets before every single action; a batch never outlives
// the conditions that admitted it.
func (e *Engine) actOnBatch(ctx context.Context, candidates []enumerate.Candidate) (bool, termination.Reason, string, error) {
	acted := false
	for _, cand := range candidates {
		if e.deps.Sentinel.Triggered() {
			return acted, termination.ReasonKillSwitch, "", nil
		}
		if ctx.Err() != nil {
			return acted, termination.ReasonCanceled, "", ctx.Err()
		}
		if dec := e.deps.Governor.Check(); !dec.Allowed {
			return acted, denialReason(dec.Denial), "", nil
		}

		out, err := e.deps.Executor.Act(ctx, cand)
		if err != nil {
			if ctx.Err() != nil {
				return acted, termination.ReasonCanceled, "", ctx.Err()
			}
			e.log.Error("Surface failed mid-action",
				zap.String("identity", cand.Identity), zap.Error(err))
			return acted, termination.ReasonSurfaceFailed, "", err
		}

		if out.Blocked {
			if out.Acted() {
				// The block surfaced after the action landed; it still spends
				// budget, exactly as a clean action would.
				e.state.MarkActioned(cand.Identity)
				e.recordAction(out)
				acted = true
			} else {
				e.state.MarkSkipped(cand.Identity)
			}
			return acted, termination.ReasonBlockDetected, out.BlockPhrase, nil
		}

		if !out.Acted() {
			// Gone or otherwise unactionable. Processed regardless, so it is
			// never retried this run.
			e.state.MarkSkipped(cand.Identity)
			continue
		}

		e.state.MarkActioned(cand.Identity)
		acted = true
		e.recordAction(out)

		if stopped, werr := e.pause(ctx, e.actionDelay()); werr != nil {
			return acted, termination.ReasonCanceled, "", werr
		} else if stopped {
			return acted, termination.ReasonKillSwitch, "", nil
		}
	}
	return acted, termination.ReasonNone, "", nil
}

// recordAction commits one attempt to the budgets. Unverified attempts count
// unless optimistic counting is disabled. Simulated runs consume the in-run
// and rolling windows, so a simulation previews real pacing, but never touch
// the persistent counters.
func (e *Engine) recordAction(out executor.Outcome) {
	if out.State == executor.StateUnverified && !e.cfg.Run.CountUnverified {
		e.log.Warn("Unverified attempt not counted against budgets")
		return
	}
	e.deps.Governor.Record()
	if out.Simulated {
		return
	}
	// Persistence failures are logged by the store; the run continues on
	// in-memory counts.
	_ = e.deps.Store.RecordAction(governor.DayKey(time.Now()))
}

// pause waits for d while polling the kill switch.
func (e *Engine) pause(ctx context.Context, d time.Duration) (bool, error) {
	return killswitch.Wait(ctx, d, e.cfg.Delays.KillSwitchPoll, e.deps.Sentinel.Triggered)
}

// actionDelay draws the randomized inter-action delay.
func (e *Engine) actionDelay() time.Duration {
	min, max := e.cfg.Delays.MinActionDelay, e.cfg.Delays.MaxActionDelay
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Int63n(int64(max-min)+1))
}

func (e *Engine) report(reason termination.Reason, phrase string, started time.Time) *Report {
	return &Report{
		RunID:       e.runID,
		Reason:      reason,
		BlockPhrase: phrase,
		Simulated:   e.cfg.Run.Simulate,
		Actioned:    e.state.Actioned(),
		Skipped:     e.state.Skipped(),
		ActionCount: e.deps.Governor.ActionsThisRun(),
		Processed:   e.state.ProcessedCount(),
		Lifetime:    e.deps.Store.LifetimeTotal(),
		Elapsed:     time.Since(started),
	}
}

func (e *Engine) logSummary(r *Report) {
	fields := []zap.Field{
		zap.String("reason", string(r.Reason)),
		zap.Bool("simulate", r.Simulated),
		zap.Int("actions", r.ActionCount),
		zap.Int("processed", r.Processed),
		zap.Strings("actioned", r.Actioned),
		zap.Strings("skipped", r.Skipped),
		zap.Int64("lifetime_total", r.Lifetime),
		zap.Duration("elapsed", r.Elapsed),
	}
	if r.BlockPhrase != "" {
		fields = append(fields, zap.String("block_phrase", r.BlockPhrase))
	}
	e.log.Info("Run finished", fields...)
}

func denialReason(d governor.Denial) termination.Reason {
	switch d {
	case governor.DenialRunCap:
		return termination.ReasonRunCap
	case governor.DenialDailyCap:
		return termination.ReasonDailyCap
	case governor.DenialHourlyCap:
		return termination.ReasonHourlyCap
	}
	return termination.ReasonNone
}
