// File: internal/statestore/statestore.go

// Package statestore persists the durable action counters across runs. The
// store is deliberately a single small JSON file with read-then-write-whole-
// file semantics: safe under the system's one-run-at-a-time invariant,
// explicitly not safe against concurrent runs (prevent those externally).
package statestore

import (
	"fmt"
	"os"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// State is the durable counter set. It records what actually happened; caps
// are enforced by the governor, never clamped here.
type State struct {
	DailyActionCount map[string]int `json:"daily_action_count"`
	LifetimeTotal    int64          `json:"lifetime_total"`
}

// Store owns the counters file. Not safe for concurrent use.
type Store struct {
	path  string
	log   *zap.Logger
	state State
}

// Open loads the counters file at path. A missing file starts empty; a
// corrupt or unreadable one is tolerated by resetting to empty with a
// warning, preferring availability over perfect history (the caps are
// conservative by design).
func Open(path string, logger *zap.Logger) *Store {
	s := &Store{
		path: path,
		log:  logger.Named("statestore"),
		state: State{
			DailyActionCount: make(map[string]int),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("Counters file unreadable; starting from empty state",
				zap.String("path", path), zap.Error(err))
		}
		return s
	}

	var loaded State
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.log.Warn("Counters file corrupt; starting from empty state",
			zap.String("path", path), zap.Error(err))
		return s
	}
	if loaded.DailyActionCount == nil {
		loaded.DailyActionCount = make(map[string]int)
	}
	s.state = loaded
	return s
}

// DayCount returns the recorded count for a calendar-day key.
func (s *Store) DayCount(day string) int {
	return s.state.DailyActionCount[day]
}

// LifetimeTotal returns the all-time action count.
func (s *Store) LifetimeTotal() int64 {
	return s.state.LifetimeTotal
}

// RecordAction increments the given day's count and the lifetime total, then
// writes the whole file synchronously. The write completes before the next
// action may proceed, so an interruption mid-run never loses the last
// successful count. A write failure degrades to in-memory counting with a
// warning; it does not stop the run.
func (s *Store) RecordAction(day string) error {
	s.state.DailyActionCount[day]++
	s.state.LifetimeTotal++

	if err := s.flush(); err != nil {
		s.log.Warn("Failed to persist counters; continuing with in-memory state",
			zap.String("path", s.path), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) flush() error {
	raw, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal counters: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write counters file: %w", err)
	}
	return nil
}
