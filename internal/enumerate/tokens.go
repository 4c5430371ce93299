// File: internal/enumerate/tokens.go
package enumerate

import (
	"strings"

	"github.com/xkilldash9x/listdrain/internal/config"
)

// TokenSet is a list of localized text fragments matched case-insensitively
// against trimmed element text.
type TokenSet []string

// NewTokenSet normalizes the fragments once so matching is cheap.
func NewTokenSet(tokens []string) TokenSet {
	ts := make(TokenSet, 0, len(tokens))
	for _, t := range tokens {
		if n := strings.ToLower(strings.TrimSpace(t)); n != "" {
			ts = append(ts, n)
		}
	}
	return ts
}

// Matches reports whether any fragment occurs in the given text.
func (ts TokenSet) Matches(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return false
	}
	for _, tok := range ts {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// Tokens bundles every token set the engine matches against. The sets come
// from configuration; each must cover all locales the surface may render.
type Tokens struct {
	// Actionable marks a control offering the reversible action.
	Actionable TokenSet
	// Reversed marks the opposite, post-action state.
	Reversed TokenSet
	// Confirm and Cancel identify the confirmation dialog's buttons.
	Confirm TokenSet
	Cancel  TokenSet
	// Boundary marks the heading that ends the real list.
	Boundary TokenSet
}

// TokensFromConfig builds the token sets from configuration.
func TokensFromConfig(c config.TokensConfig) Tokens {
	return Tokens{
		Actionable: NewTokenSet(c.Actionable),
		Reversed:   NewTokenSet(c.Reversed),
		Confirm:    NewTokenSet(c.Confirm),
		Cancel:     NewTokenSet(c.Cancel),
		Boundary:   NewTokenSet(c.Boundary),
	}
}

// IsActionable classifies a control's visible text.
func (t Tokens) IsActionable(label, aria string) bool {
	return t.Actionable.Matches(label) || t.Actionable.Matches(aria)
}

// IsReversed reports whether a label shows the post-action state. Reversed
// fragments are frequently substrings of actionable ones ("follow" inside
// "following"), so an actionable match wins.
func (t Tokens) IsReversed(label string) bool {
	return t.Reversed.Matches(label) && !t.Actionable.Matches(label)
}

// IsConfirm reports whether a label names the confirm action and not the
// cancel one.
func (t Tokens) IsConfirm(label string) bool {
	return t.Confirm.Matches(label) && !t.Cancel.Matches(label)
}
