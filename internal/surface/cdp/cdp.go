// File: internal/surface/cdp/cdp.go

// Package cdp implements the surface over a running Chrome instance attached
// through the DevTools protocol. The browser is expected to be started by the
// operator with remote debugging enabled and the list UI already open; this
// package never launches or navigates anything.
package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/listdrain/internal/config"
	"github.com/xkilldash9x/listdrain/internal/surface"
)

// Adapter is the chromedp-backed surface. Not safe for concurrent use.
type Adapter struct {
	cfg     config.BrowserConfig
	log     *zap.Logger
	limiter *rate.Limiter

	tab     context.Context
	cancels []context.CancelFunc
}

var _ surface.Surface = (*Adapter)(nil)

// Attach connects to the browser at cfg.RemoteURL and binds to its active
// tab. The caller must Close the adapter when the run ends.
func Attach(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Adapter, error) {
	if cfg.RemoteURL == "" {
		return nil, fmt.Errorf("browser.remote_url is required")
	}

	a := &Adapter{
		cfg:     cfg,
		log:     logger.Named("cdp"),
		limiter: newLimiter(cfg.MinEventGap),
	}

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	a.tab = tabCtx
	a.cancels = []context.CancelFunc{cancelTab, cancelAlloc}

	attachCtx, cancelAttach := context.WithTimeout(tabCtx, cfg.AttachTimeout)
	defer cancelAttach()
	if err := chromedp.Run(attachCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		a.Close()
		return nil, fmt.Errorf("attach to browser at %s: %w", cfg.RemoteURL, err)
	}

	a.log.Info("Attached to browser", zap.String("remote_url", cfg.RemoteURL))
	return a, nil
}

// Close releases the browser attachment. The browser itself keeps running.
func (a *Adapter) Close() {
	for _, cancel := range a.cancels {
		cancel()
	}
}

func newLimiter(gap time.Duration) *rate.Limiter {
	if gap <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(gap), 1)
}

// Snapshot implements surface.Surface.
func (a *Adapter) Snapshot(ctx context.Context) (*surface.Snapshot, error) {
	var payload snapshotPayload
	if err := a.evaluate(ctx, a.snapshotJS(), &payload); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return payload.toSnapshot(), nil
}

// Refresh implements surface.Surface.
func (a *Adapter) Refresh(ctx context.Context, identity string) (surface.Control, bool, error) {
	var payload controlPayload
	if err := a.evaluate(ctx, a.refreshJS(identity), &payload); err != nil {
		return surface.Control{}, false, fmt.Errorf("refresh %q: %w", identity, err)
	}
	if !payload.Found {
		return surface.Control{}, false, nil
	}
	return payload.toControl(), true, nil
}

// DialogControls implements surface.Surface. The confirmation dialog renders
// in a portal outside the scope container, so this enumerates document-wide.
func (a *Adapter) DialogControls(ctx context.Context) ([]surface.Control, error) {
	var payload struct {
		Controls []controlPayload `json:"controls"`
	}
	if err := a.evaluate(ctx, a.dialogJS(), &payload); err != nil {
		return nil, fmt.Errorf("dialog controls: %w", err)
	}
	out := make([]surface.Control, 0, len(payload.Controls))
	for _, c := range payload.Controls {
		out = append(out, c.toControl())
	}
	return out, nil
}

// PageText implements surface.Surface.
func (a *Adapter) PageText(ctx context.Context) (string, error) {
	var text string
	js := `document.body ? document.body.innerText : ''`
	if err := a.evaluate(ctx, js, &text); err != nil {
		return "", fmt.Errorf("page text: %w", err)
	}
	return text, nil
}

// DispatchPointer implements surface.Surface. Presses, releases and wheel
// events go through the rate limiter; bare moves do not, their cadence is the
// motion synthesizer's job.
func (a *Adapter) DispatchPointer(ctx context.Context, ev surface.PointerEvent) error {
	if ev.Type != surface.PointerMove {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return chromedp.Run(a.tab, mouseParams(ev))
}

// ScrollNudge implements surface.Surface. The wheel event is anchored inside
// the scope container so the inner list scrolls, not the page behind it.
func (a *Adapter) ScrollNudge(ctx context.Context, deltaY float64) error {
	var anchor struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := a.evaluate(ctx, a.anchorJS(), &anchor); err != nil {
		return fmt.Errorf("scroll anchor: %w", err)
	}
	return a.DispatchPointer(ctx, surface.PointerEvent{
		Type:   surface.PointerWheel,
		X:      anchor.X,
		Y:      anchor.Y,
		DeltaY: deltaY,
	})
}

// evaluate runs a JS expression in the attached tab and decodes the result.
func (a *Adapter) evaluate(ctx context.Context, js string, out any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return chromedp.Run(a.tab, chromedp.Evaluate(js, out))
}

// mouseParams converts a pointer event to the protocol call.
func mouseParams(ev surface.PointerEvent) *input.DispatchMouseEventParams {
	p := input.DispatchMouseEvent(input.MouseType(ev.Type), ev.X, ev.Y)
	switch ev.Type {
	case surface.PointerPress:
		p = p.WithButton(input.MouseButton(ev.Button)).
			WithClickCount(int64(ev.ClickCount)).
			WithButtons(1)
	case surface.PointerRelease:
		p = p.WithButton(input.MouseButton(ev.Button)).
			WithClickCount(int64(ev.ClickCount))
	case surface.PointerWheel:
		p = p.WithDeltaX(0).WithDeltaY(ev.DeltaY)
	}
	return p
}
