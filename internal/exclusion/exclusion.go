// File: internal/exclusion/exclusion.go

// Package exclusion loads the identity exclusion list: targets that must
// never be actioned no matter how often they re-render. The list is read
// once at run start and is read-only for the run's duration.
package exclusion

import (
	"os"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Set is a normalized identity exclusion set.
type Set map[string]struct{}

// Contains reports whether the identity is excluded. The lookup normalizes
// the same way loading does, so callers may pass raw identities.
func (s Set) Contains(identity string) bool {
	_, ok := s[Normalize(identity)]
	return ok
}

// Len returns the number of excluded identities.
func (s Set) Len() int { return len(s) }

// Normalize lowercases, trims, and strips a leading "@" from an identity.
func Normalize(identity string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(identity)), "@")
}

// placeholder entries written into a freshly created exclusion file so the
// expected format is self-documenting.
var placeholder = []string{"friend_one", "brand_abc"}

// Load reads the exclusion file at path. A missing file is created with
// placeholder entries (and loaded). Read or parse errors degrade to an empty
// set with a logged warning; an unusable exclusion list must never be fatal.
func Load(path string, logger *zap.Logger) Set {
	log := logger.Named("exclusion")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if raw, merr := json.MarshalIndent(placeholder, "", "  "); merr == nil {
			if werr := os.WriteFile(path, raw, 0o644); werr != nil {
				log.Warn("Could not create exclusion template", zap.String("path", path), zap.Error(werr))
				return Set{}
			}
			log.Info("Created exclusion template; edit it to protect identities",
				zap.String("path", path), zap.Strings("placeholders", placeholder))
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read exclusion list; proceeding with empty set",
			zap.String("path", path), zap.Error(err))
		return Set{}
	}

	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn("Failed to parse exclusion list; proceeding with empty set",
			zap.String("path", path), zap.Error(err))
		return Set{}
	}

	set := make(Set, len(entries))
	for _, e := range entries {
		if n := Normalize(e); n != "" {
			set[n] = struct{}{}
		}
	}
	log.Info("Exclusion list loaded", zap.String("path", path), zap.Int("entries", len(set)))
	return set
}
