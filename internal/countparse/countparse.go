// File: internal/countparse/countparse.go

// Package countparse turns localized, abbreviated count labels ("1.2k",
// "1,2 rb", "1,234") into integers. List headers abbreviate large counts
// differently per locale; the engine only needs a best-effort total, so every
// failure mode collapses to "unknown" rather than an error.
package countparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches the first numeric token (integer or decimal, comma or
// period separator) and an optional trailing alphabetic multiplier.
var numberPattern = regexp.MustCompile(`(\d+[.,]?\d*)\s*([a-z]+)?`)

// multipliers maps locale suffix spellings to their scale. Each scale carries
// at least two spellings (English + Indonesian).
var multipliers = map[string]float64{
	"k":  1_000,
	"rb": 1_000, // ribu
	"m":  1_000_000,
	"jt": 1_000_000, // juta
	"b":  1_000_000_000,
	"md": 1_000_000_000, // miliar
}

// Parse extracts an integer count from a free-form label. The second return
// is false when no count could be recovered; callers must treat that as
// "total not known", never as zero.
func Parse(label string) (int64, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, "\u00a0", " ")
	if s == "" {
		return 0, false
	}

	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return digitsFallback(s)
	}

	numStr := strings.ReplaceAll(m[1], ",", ".")
	// "1.234" style thousand separators leave multiple dots after
	// normalization; strip all but the last so ParseFloat accepts it.
	if strings.Count(numStr, ".") > 1 {
		last := strings.LastIndex(numStr, ".")
		numStr = strings.ReplaceAll(numStr[:last], ".", "") + numStr[last:]
	}

	val, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return digitsFallback(numStr)
	}

	suffix := strings.TrimSpace(m[2])
	if suffix != "" {
		scale, ok := multipliers[suffix]
		if !ok {
			// Unknown word after the number; the digits alone are still the
			// best guess when the suffix is not a known multiplier.
			scale = 1
		}
		val *= scale
	} else if strings.Contains(m[1], ",") || strings.Contains(m[1], ".") {
		// No multiplier: a separator in the raw token was a thousands
		// separator, not a decimal point ("1,234" == 1234).
		return digitsFallback(m[1])
	}

	return int64(math.Round(val)), true
}

// digitsFallback concatenates every digit character, the last-resort reading
// of a label whose structure we do not recognize.
func digitsFallback(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
