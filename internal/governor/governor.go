// File: internal/governor/governor.go

// Package governor enforces the three independent action budgets: a per-run
// cap, a persisted calendar-day cap, and a rolling per-hour window. A denial
// is an expected, typed outcome, not an error; the engine surfaces it as the
// run's termination reason.
package governor

import (
	"time"

	"go.uber.org/zap"
)

// Denial identifies which budget refused the next action.
type Denial string

const (
	DenialNone      Denial = ""
	DenialRunCap    Denial = "run cap reached"
	DenialDailyCap  Denial = "daily cap reached"
	DenialHourlyCap Denial = "hourly cap reached"
)

// Decision is the outcome of a single budget check.
type Decision struct {
	Allowed bool
	Denial  Denial
}

// DayCounter exposes the persisted per-day counts. Implemented by the state
// store; the governor re-reads it on every check so counts recorded after
// each action are always reflected.
type DayCounter interface {
	DayCount(day string) int
}

// Limits carries the configured budgets.
type Limits struct {
	MaxActionsPerRun int
	DailyCap         int
	PerHourCap       int
	HourWindow       time.Duration
}

// Governor tracks the in-run budgets and consults the day counter for the
// persisted one. Not safe for concurrent use; the engine is single-threaded
// by design.
type Governor struct {
	limits Limits
	days   DayCounter
	log    *zap.Logger
	now    func() time.Time

	actionsThisRun int
	timestamps     []time.Time
}

// Option customizes a Governor.
type Option func(*Governor)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

// New creates a Governor over the given limits and day counter.
func New(limits Limits, days DayCounter, logger *zap.Logger, opts ...Option) *Governor {
	g := &Governor{
		limits: limits,
		days:   days,
		log:    logger.Named("governor"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DayKey formats a time as the calendar-day key used by the persistent store.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Check evaluates all three budgets. All must pass for the next action to
// proceed. The rolling window is pruned as a side effect.
func (g *Governor) Check() Decision {
	now := g.now()

	if g.actionsThisRun >= g.limits.MaxActionsPerRun {
		return g.deny(DenialRunCap)
	}
	if g.days.DayCount(DayKey(now)) >= g.limits.DailyCap {
		return g.deny(DenialDailyCap)
	}

	g.prune(now)
	if len(g.timestamps) >= g.limits.PerHourCap {
		return g.deny(DenialHourlyCap)
	}

	return Decision{Allowed: true}
}

// Record commits one approved action to the in-run budgets. The caller is
// responsible for persisting the daily count through the state store.
func (g *Governor) Record() {
	now := g.now()
	g.actionsThisRun++
	g.timestamps = append(g.timestamps, now)
}

// ActionsThisRun reports the number of actions recorded so far this run.
func (g *Governor) ActionsThisRun() int {
	return g.actionsThisRun
}

// WindowCount reports how many actions remain inside the rolling window.
func (g *Governor) WindowCount() int {
	g.prune(g.now())
	return len(g.timestamps)
}

func (g *Governor) prune(now time.Time) {
	cutoff := now.Add(-g.limits.HourWindow)
	keep := g.timestamps[:0]
	for _, ts := range g.timestamps {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	g.timestamps = keep
}

func (g *Governor) deny(d Denial) Decision {
	g.log.Info("Action budget exhausted",
		zap.String("denial", string(d)),
		zap.Int("actions_this_run", g.actionsThisRun),
		zap.Int("window_count", len(g.timestamps)),
	)
	return Decision{Allowed: false, Denial: d}
}
