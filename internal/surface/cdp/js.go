// File: internal/surface/cdp/js.go
package cdp

import (
	"fmt"

	"github.com/xkilldash9x/listdrain/internal/surface"
)

// headingLookaheadCap bounds how many trailing control labels per heading
// the snapshot carries back. The enumerator applies the configured lookahead
// on top; this only keeps payloads small.
const headingLookaheadCap = 30

type boxPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type controlPayload struct {
	Found    bool       `json:"found"`
	Identity string     `json:"identity"`
	Label    string     `json:"label"`
	Aria     string     `json:"aria"`
	Box      boxPayload `json:"box"`
	HasBox   bool       `json:"hasBox"`
}

func (c controlPayload) toControl() surface.Control {
	return surface.Control{
		Identity: c.Identity,
		Label:    c.Label,
		Aria:     c.Aria,
		Box:      surface.Rect{X: c.Box.X, Y: c.Box.Y, Width: c.Box.W, Height: c.Box.H},
		HasBox:   c.HasBox,
	}
}

type headingPayload struct {
	Text      string   `json:"text"`
	Following []string `json:"following"`
}

type snapshotPayload struct {
	Scoped   bool             `json:"scoped"`
	Rendered int              `json:"rendered"`
	Controls []controlPayload `json:"controls"`
	Headings []headingPayload `json:"headings"`
	Total    string           `json:"total"`
}

func (p snapshotPayload) toSnapshot() *surface.Snapshot {
	snap := &surface.Snapshot{
		Scoped:     p.Scoped,
		Rendered:   p.Rendered,
		TotalLabel: p.Total,
	}
	for _, c := range p.Controls {
		snap.Controls = append(snap.Controls, c.toControl())
	}
	for _, h := range p.Headings {
		snap.Headings = append(snap.Headings, surface.Heading{
			Text:      h.Text,
			Following: h.Following,
		})
	}
	return snap
}

// jsHelpers declares the shared functions every expression below uses.
// Identities are resolved by walking up from a control until an ancestor
// subtree contains a profile link, then taking the first path segment of its
// href, lowercased. Every consumer normalizes identities to lower case, so
// resolution must hand out the same key or refreshes would never match.
const jsHelpers = `
const identityOf = (el) => {
	let node = el;
	for (let i = 0; i < 6 && node; i++, node = node.parentElement) {
		const a = node.querySelector ? node.querySelector('a[href]') : null;
		if (a) {
			const href = a.getAttribute('href') || '';
			const segs = href.split('?')[0].split('#')[0].split('/').filter(Boolean);
			if (segs.length) return segs[0].toLowerCase();
			return '';
		}
	}
	return '';
};
const describe = (el) => {
	const r = el.getBoundingClientRect();
	return {
		identity: identityOf(el),
		label: (el.innerText || '').trim(),
		aria: el.getAttribute('aria-label') || '',
		box: {x: r.x, y: r.y, w: r.width, h: r.height},
		hasBox: r.width > 0 && r.height > 0,
	};
};
`

// snapshotJS builds the one-round enumeration expression.
func (a *Adapter) snapshotJS() string {
	return fmt.Sprintf(`(() => {
%s
	const scope = %q ? document.querySelector(%q) : null;
	const root = scope || document;
	const nodes = Array.from(root.querySelectorAll(%q));
	const controls = nodes.map(describe);
	const headings = [];
	for (const h of root.querySelectorAll(%q)) {
		const text = (h.innerText || '').trim();
		if (!text || text.length > 80) continue;
		const following = [];
		for (let i = 0; i < nodes.length && following.length < %d; i++) {
			if (h.compareDocumentPosition(nodes[i]) & Node.DOCUMENT_POSITION_FOLLOWING) {
				following.push(controls[i].label || controls[i].aria);
			}
		}
		headings.push({text: text, following: following});
	}
	const total = %q ? ((document.querySelector(%q) || {}).innerText || '').trim() : '';
	return {scoped: !!scope, rendered: nodes.length, controls: controls, headings: headings, total: total};
})()`,
		jsHelpers,
		a.cfg.ScopeSelector, a.cfg.ScopeSelector,
		a.cfg.ControlSelector,
		a.cfg.HeadingSelector,
		headingLookaheadCap,
		a.cfg.TotalSelector, a.cfg.TotalSelector,
	)
}

// refreshJS builds the single-control re-read expression.
func (a *Adapter) refreshJS(identity string) string {
	return fmt.Sprintf(`(() => {
%s
	const scope = %q ? document.querySelector(%q) : null;
	const root = scope || document;
	for (const el of root.querySelectorAll(%q)) {
		const d = describe(el);
		if (d.identity === %q) {
			d.found = true;
			return d;
		}
	}
	return {found: false};
})()`,
		jsHelpers,
		a.cfg.ScopeSelector, a.cfg.ScopeSelector,
		a.cfg.ControlSelector,
		identity,
	)
}

// dialogJS enumerates visible controls document-wide.
func (a *Adapter) dialogJS() string {
	return fmt.Sprintf(`(() => {
%s
	const controls = [];
	for (const el of document.querySelectorAll(%q)) {
		const d = describe(el);
		if (d.hasBox) controls.push(d);
	}
	return {controls: controls};
})()`,
		jsHelpers,
		a.cfg.ControlSelector,
	)
}

// anchorJS returns a point inside the scope container, or the viewport
// center when the scope is missing.
func (a *Adapter) anchorJS() string {
	return fmt.Sprintf(`(() => {
	const scope = %q ? document.querySelector(%q) : null;
	if (scope) {
		const r = scope.getBoundingClientRect();
		if (r.width > 0 && r.height > 0) {
			return {x: r.x + r.width / 2, y: r.y + r.height / 2};
		}
	}
	return {x: window.innerWidth / 2, y: window.innerHeight / 2};
})()`,
		a.cfg.ScopeSelector, a.cfg.ScopeSelector,
	)
}
