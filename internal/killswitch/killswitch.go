// File: internal/killswitch/killswitch.go

// Package killswitch implements the out-of-band stop request: a sentinel
// file whose mere existence asks the run to halt, plus the interruptible
// wait primitive every suspension point in the engine goes through so a stop
// request is honored within one poll interval rather than at sleep end.
package killswitch

import (
	"context"
	"os"
	"time"
)

// Sentinel watches a filesystem path. Creating the file trips the switch;
// removing it re-arms it.
type Sentinel struct {
	path string
}

// NewSentinel creates a Sentinel for the given path.
func NewSentinel(path string) *Sentinel {
	return &Sentinel{path: path}
}

// Path returns the watched path.
func (s *Sentinel) Path() string { return s.path }

// Triggered reports whether the sentinel file currently exists.
func (s *Sentinel) Triggered() bool {
	if s == nil || s.path == "" {
		return false
	}
	_, err := os.Stat(s.path)
	return err == nil
}

// Wait sleeps for d while polling stop every interval. It returns true as
// soon as stop reports true, and ctx.Err() if the context ends first. A nil
// stop degrades to a plain context-aware sleep.
func Wait(ctx context.Context, d, interval time.Duration, stop func() bool) (bool, error) {
	if stop != nil && stop() {
		return true, nil
	}
	if d <= 0 {
		return false, ctx.Err()
	}
	if interval <= 0 || interval > d {
		interval = d
	}

	deadline := time.Now().Add(d)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case now := <-ticker.C:
			if stop != nil && stop() {
				return true, nil
			}
			if !now.Before(deadline) {
				return false, nil
			}
		}
	}
}
