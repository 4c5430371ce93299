// File: internal/executor/executor.go

// Package executor performs one complete two-step action against a single
// target: approach the control with a synthesized pointer path, press it,
// locate and press the confirmation button, scan for block indicators, and
// verify the state flip. Each attempt walks an explicit state machine so the
// engine can record exactly how far every target got.
package executor

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/listdrain/internal/enumerate"
	"github.com/xkilldash9x/listdrain/internal/motion"
	"github.com/xkilldash9x/listdrain/internal/surface"
)

// State is how far an attempt progressed before it ended.
type State string

const (
	StateDiscovered   State = "discovered"
	StateApproaching  State = "approaching"
	StatePrimaryActed State = "primary_acted"
	StateAwaitingUI   State = "awaiting_confirm_ui"
	StateConfirmActed State = "confirm_acted"
	StateVerifying    State = "verifying"
	StateVerified     State = "verified"
	StateUnverified   State = "unverified"
	StateSkipped      State = "skipped"
	StateAborted      State = "aborted"
)

// The confirmation dialog sits near the pointer after the primary press, so
// its approach path uses fewer steps than the main one.
const (
	confirmMinSteps = 12
	confirmMaxSteps = 20
)

// Outcome reports the result of one attempt.
type Outcome struct {
	State State
	// Simulated is true when the run mode suppressed the actual presses.
	Simulated bool
	// Blocked is true when a block indicator appeared; the engine must abort
	// the whole run, not just this target.
	Blocked bool
	// BlockPhrase is the indicator fragment that matched, for the report.
	BlockPhrase string
}

// Acted reports whether the target should count as an attempted action for
// rate purposes. Unverified attempts count too when optimistic counting is
// on; the engine decides that, so anything past the primary press qualifies.
func (o Outcome) Acted() bool {
	switch o.State {
	case StatePrimaryActed, StateAwaitingUI, StateConfirmActed,
		StateVerifying, StateVerified, StateUnverified:
		return true
	}
	return false
}

// Config carries the executor's tunables, copied out of the application
// configuration at construction.
type Config struct {
	Simulate       bool
	StepDelayMin   time.Duration
	StepDelayMax   time.Duration
	PressHoldMin   time.Duration
	PressHoldMax   time.Duration
	ConfirmWait    time.Duration
	VerifyRetries  int
	VerifyInterval time.Duration
}

// Executor drives attempts against a surface. Not safe for concurrent use;
// it tracks the pointer position across calls so consecutive approaches chain
// naturally.
type Executor struct {
	surf    surface.Surface
	synth   *motion.Synthesizer
	tokens  enumerate.Tokens
	blocked enumerate.TokenSet
	cfg     Config
	rng     *rand.Rand
	log     *zap.Logger

	cursor motion.Vector2D
}

// New creates an Executor. The rng is shared with the caller so a seeded run
// replays identically.
func New(surf surface.Surface, synth *motion.Synthesizer, tokens enumerate.Tokens, blockPhrases enumerate.TokenSet, cfg Config, rng *rand.Rand, logger *zap.Logger) *Executor {
	return &Executor{
		surf:    surf,
		synth:   synth,
		tokens:  tokens,
		blocked: blockPhrases,
		cfg:     cfg,
		rng:     rng,
		log:     logger.Named("executor"),
		cursor:  motion.Vector2D{X: 4 + rng.Float64()*120, Y: 4 + rng.Float64()*120},
	}
}

// Act runs the full state machine for one candidate. A non-nil error means
// the surface or the context failed mid-attempt; the outcome still reports
// how far the attempt got.
func (e *Executor) Act(ctx context.Context, cand enumerate.Candidate) (Outcome, error) {
	log := e.log.With(zap.String("identity", cand.Identity))

	// Boxes from the enumeration snapshot are stale after any scroll. Only a
	// box re-measured right now may be pressed; a target that cannot be
	// re-read is skipped.
	box, ok, err := e.locate(ctx, cand.Identity)
	if err != nil {
		return Outcome{State: StateDiscovered}, err
	}
	if !ok {
		log.Warn("Target no longer rendered; skipping")
		return Outcome{State: StateSkipped}, nil
	}

	cx, cy := box.Center()
	target := e.nearCenter(box, cx, cy)
	if err := e.approach(ctx, target, e.synth.Steps()); err != nil {
		return Outcome{State: StateApproaching}, err
	}

	if err := e.press(ctx); err != nil {
		return Outcome{State: StateApproaching}, err
	}
	log.Debug("Primary control pressed", zap.Bool("simulate", e.cfg.Simulate))

	if err := sleep(ctx, e.cfg.ConfirmWait); err != nil {
		return Outcome{State: StatePrimaryActed}, err
	}

	if phrase, hit, err := e.scanForBlock(ctx); err != nil {
		return Outcome{State: StatePrimaryActed}, err
	} else if hit {
		log.Error("Block indicator after primary press", zap.String("phrase", phrase))
		return Outcome{State: StateAborted, Blocked: true, BlockPhrase: phrase}, nil
	}

	if e.cfg.Simulate {
		// No press was dispatched, so no dialog exists and no state flip
		// will ever verify. The attempt is complete.
		log.Info("Simulated action complete")
		return Outcome{State: StateVerified, Simulated: true}, nil
	}

	confirmed, err := e.confirm(ctx)
	if err != nil {
		return Outcome{State: StateAwaitingUI}, err
	}
	if !confirmed {
		// Some variants act on the primary press alone. Fall through to
		// verification rather than failing the attempt outright.
		log.Warn("Confirmation button not found; relying on verification")
	}

	if phrase, hit, err := e.scanForBlock(ctx); err != nil {
		return Outcome{State: StateConfirmActed}, err
	} else if hit {
		// At this point the action most likely landed; the outcome keeps its
		// acted state so the attempt still counts against the budgets.
		log.Error("Block indicator after confirmation", zap.String("phrase", phrase))
		state := StatePrimaryActed
		if confirmed {
			state = StateConfirmActed
		}
		return Outcome{State: state, Blocked: true, BlockPhrase: phrase}, nil
	}

	verified, err := e.verify(ctx, cand.Identity)
	if err != nil {
		return Outcome{State: StateVerifying}, err
	}
	if !verified {
		log.Warn("State flip not observed within the verification window")
		return Outcome{State: StateUnverified}, nil
	}

	log.Info("Action verified")
	return Outcome{State: StateVerified}, nil
}

// locate re-reads the target's control. The snapshot box is never used here;
// after any scroll it may cover a different row entirely.
func (e *Executor) locate(ctx context.Context, identity string) (surface.Rect, bool, error) {
	ctl, ok, err := e.surf.Refresh(ctx, identity)
	if err != nil {
		return surface.Rect{}, false, err
	}
	if !ok || !ctl.HasBox {
		return surface.Rect{}, false, nil
	}
	return ctl.Box, true, nil
}

// nearCenter picks a click point inside the box, biased toward but never
// exactly at the center.
func (e *Executor) nearCenter(box surface.Rect, cx, cy float64) motion.Vector2D {
	dx := (e.rng.Float64() - 0.5) * box.Width * 0.4
	dy := (e.rng.Float64() - 0.5) * box.Height * 0.4
	return motion.Vector2D{X: cx + dx, Y: cy + dy}
}

// approach moves the pointer from its current position to the target along a
// synthesized path, dispatching a move per step with a randomized inter-step
// delay. Moves are dispatched even in simulate mode; they change nothing.
func (e *Executor) approach(ctx context.Context, target motion.Vector2D, steps int) error {
	path := e.synth.Path(e.cursor, target, steps)
	for _, p := range path {
		if err := e.surf.DispatchPointer(ctx, surface.PointerEvent{
			Type: surface.PointerMove,
			X:    p.X,
			Y:    p.Y,
		}); err != nil {
			return err
		}
		e.cursor = p
		if err := sleep(ctx, e.stepDelay()); err != nil {
			return err
		}
	}
	return nil
}

// press dispatches a press-hold-release at the current pointer position. In
// simulate mode the hold timing runs but nothing is dispatched.
func (e *Executor) press(ctx context.Context) error {
	hold := e.durBetween(e.cfg.PressHoldMin, e.cfg.PressHoldMax)
	if e.cfg.Simulate {
		return sleep(ctx, hold)
	}
	down := surface.PointerEvent{
		Type: surface.PointerPress, X: e.cursor.X, Y: e.cursor.Y,
		Button: "left", ClickCount: 1,
	}
	if err := e.surf.DispatchPointer(ctx, down); err != nil {
		return err
	}
	if err := sleep(ctx, hold); err != nil {
		return err
	}
	up := down
	up.Type = surface.PointerRelease
	return e.surf.DispatchPointer(ctx, up)
}

// confirm locates the confirmation button document-wide and presses it.
// Returns false without error when no such button is rendered.
func (e *Executor) confirm(ctx context.Context) (bool, error) {
	controls, err := e.surf.DialogControls(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range controls {
		if !c.HasBox || !e.tokens.IsConfirm(c.Text()) {
			continue
		}
		cx, cy := c.Box.Center()
		target := e.nearCenter(c.Box, cx, cy)
		steps := confirmMinSteps + e.rng.Intn(confirmMaxSteps-confirmMinSteps+1)
		if err := e.approach(ctx, target, steps); err != nil {
			return false, err
		}
		if err := e.press(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// scanForBlock matches the visible page text against the block phrases.
func (e *Executor) scanForBlock(ctx context.Context) (string, bool, error) {
	text, err := e.surf.PageText(ctx)
	if err != nil {
		return "", false, err
	}
	lower := strings.ToLower(text)
	for _, phrase := range e.blocked {
		if strings.Contains(lower, phrase) {
			return phrase, true, nil
		}
	}
	return "", false, nil
}

// verify polls the target until its control shows the reversed state or
// disappears from the rendered list, either of which confirms the flip.
func (e *Executor) verify(ctx context.Context, identity string) (bool, error) {
	for attempt := 0; attempt < e.cfg.VerifyRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, e.cfg.VerifyInterval); err != nil {
				return false, err
			}
		}
		ctl, ok, err := e.surf.Refresh(ctx, identity)
		if err != nil {
			return false, err
		}
		if !ok {
			// The row left the rendered window. Treat as flipped; the list
			// removes entries whose state changed.
			return true, nil
		}
		if e.tokens.IsReversed(ctl.Text()) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Executor) stepDelay() time.Duration {
	return e.durBetween(e.cfg.StepDelayMin, e.cfg.StepDelayMax)
}

func (e *Executor) durBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Int63n(int64(max-min)+1))
}

// sleep waits for d or until the context ends, whichever is first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
