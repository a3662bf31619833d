package browser

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/weaver-engine/weaver/internal/models"
)

// elementProbe is the structured value returned by the element-readiness
// JS probe (spec §4.4.1, "element readiness").
type elementProbe struct {
	Exists         bool   `json:"exists"`
	Visible        bool   `json:"visible"`
	Obscured       bool   `json:"obscured"`
	InViewport     bool   `json:"inViewport"`
	Disabled       bool   `json:"disabled"`
	ObscuringTag   string `json:"obscuringTag"`
	ObscuringClass string `json:"obscuringClass"`
}

// elementProbeScript evaluates to an elementProbe for the given selector.
// "obscured" means the element at the center point of its bounding box is
// neither the target nor one of its descendants.
const elementProbeScript = `(() => {
	const sel = %q;
	const el = document.querySelector(sel);
	if (!el) {
		return {exists:false, visible:false, obscured:false, inViewport:false, disabled:false, obscuringTag:"", obscuringClass:""};
	}
	const style = window.getComputedStyle(el);
	const rect = el.getBoundingClientRect();
	const visible = rect.width > 0 && rect.height > 0 &&
		style.display !== "none" && style.visibility !== "hidden" && parseFloat(style.opacity) !== 0;
	const cx = rect.left + rect.width / 2;
	const cy = rect.top + rect.height / 2;
	const top = visible ? document.elementFromPoint(cx, cy) : null;
	const obscured = visible && top !== null && top !== el && !el.contains(top);
	const inViewport = rect.top < window.innerHeight && rect.bottom > 0 &&
		rect.left < window.innerWidth && rect.right > 0;
	const disabled = !!el.disabled || el.getAttribute("aria-disabled") === "true";
	return {
		exists: true,
		visible: visible,
		obscured: obscured,
		inViewport: inViewport,
		disabled: disabled,
		obscuringTag: obscured ? (top.tagName || "").toLowerCase() : "",
		obscuringClass: obscured ? (top.className || "") : ""
	};
})()`

// isContextDestroyed reports whether err is chromedp/CDP's "execution
// context was destroyed" error, which fires when a navigation races an
// evaluate call mid-flight. Spec §4.4.1: this must not fail the poll — reset
// progress and retry.
func isContextDestroyed(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution context") && strings.Contains(msg, "destroyed") ||
		strings.Contains(msg, "cannot find context")
}

// probeElement runs the element-readiness probe once.
func probeElement(ctx context.Context, selector string) (elementProbe, error) {
	var p elementProbe
	script := sprintfScript(elementProbeScript, selector)
	err := chromedp.Run(ctx, chromedp.Evaluate(script, &p))
	return p, err
}

// waitForElementReady polls element readiness until exists ∧ visible ∧
// ¬obscured ∧ (¬checkClickable ∨ ¬disabled), or classifies a timeout
// per spec §4.4.1's four-way split.
func waitForElementReady(ctx context.Context, selector string, checkClickable bool, timeout, interval time.Duration) *models.JobError {
	deadline := time.Now().Add(timeout)
	var last elementProbe

	for {
		p, err := probeElement(ctx, selector)
		if err != nil && isContextDestroyed(err) {
			// Reset progress, not a failure: try again next tick.
		} else if err == nil {
			last = p
			ready := p.Exists && p.Visible && !p.Obscured && (!checkClickable || !p.Disabled)
			if ready {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return classifyElementTimeout(selector, last, checkClickable)
		}

		select {
		case <-ctx.Done():
			return models.TimeoutError("context cancelled while waiting for element", map[string]interface{}{"selector": selector})
		case <-time.After(interval):
		}
	}
}

func classifyElementTimeout(selector string, last elementProbe, checkClickable bool) *models.JobError {
	ctxBag := map[string]interface{}{"selector": selector}

	switch {
	case !last.Exists:
		return models.ElementNotFoundError("element never appeared", ctxBag)
	case !last.Visible:
		ctxBag["hint"] = "hidden by CSS"
		return models.ElementNotFoundError("element exists but is not visible", ctxBag)
	case last.Obscured:
		ctxBag["obscured_by"] = last.ObscuringTag + "." + last.ObscuringClass
		ctxBag["suggestion"] = "handle a cookie banner first"
		return models.ElementNotFoundError("element is obscured by another element", ctxBag)
	case checkClickable && last.Disabled:
		return models.ElementNotFoundError("element is disabled", ctxBag)
	default:
		return models.TimeoutError("timed out waiting for element readiness", ctxBag)
	}
}

// stabilityProbe is the structured value returned by the page-stability
// probe (spec §4.4.1, "page stability").
type stabilityProbe struct {
	ReadyState    string `json:"readyState"`
	ActiveRequests int   `json:"activeRequests"`
}

// stabilityProbeScript counts in-flight resource fetches via the Resource
// Timing API entries that have not yet recorded a responseEnd, a
// best-effort proxy for "requests still in flight" that needs no CDP
// network-domain wiring.
const stabilityProbeScript = `(() => {
	const entries = performance.getEntriesByType("resource");
	let active = 0;
	const now = performance.now();
	for (const e of entries) {
		if (e.responseEnd === 0 && now - e.startTime < 30000) {
			active++;
		}
	}
	return {readyState: document.readyState, activeRequests: active};
})()`

// waitForPageStable polls readyState+activeRequests every interval until N
// (StabilityConsecutiveProbes) consecutive probes report readyState
// "complete" and activeRequests==0. It has no result: on timeout (or a
// cancelled ctx) it simply returns, so stability is best-effort and never
// fails the job; nothing is logged.
func waitForPageStable(ctx context.Context, timeout, interval time.Duration) {
	deadline := time.Now().Add(timeout)
	streak := 0

	for {
		var p stabilityProbe
		err := chromedp.Run(ctx, chromedp.Evaluate(stabilityProbeScript, &p))
		switch {
		case err != nil && isContextDestroyed(err):
			streak = 0
		case err != nil:
			streak = 0
		case p.ReadyState == "complete" && p.ActiveRequests == 0:
			streak++
		default:
			streak = 0
		}

		if streak >= StabilityConsecutiveProbes {
			return
		}

		if time.Now().After(deadline) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// waitForNavigationSettled sleeps the fixed NavigationGrace period (so a
// just-triggered navigation actually begins before polling starts) and then
// runs waitForPageStable.
func waitForNavigationSettled(ctx context.Context, timeout, interval time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(NavigationGrace):
	}
	waitForPageStable(ctx, timeout, interval)
}

func sprintfScript(tmpl, selector string) string {
	quoted := "\"" + strings.ReplaceAll(strings.ReplaceAll(selector, "\\", "\\\\"), "\"", "\\\"") + "\""
	return strings.Replace(tmpl, "%q", quoted, 1)
}
