package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/weaver-engine/weaver/internal/models"
)

// cookieBannerPhrases is the fixed, case-insensitive substring set matched
// against visible button/role-button text (spec §6).
var cookieBannerPhrases = []string{
	"Accept all", "Accept All", "Accept cookies", "Accept Cookies",
	"I agree", "I Agree", "Agree", "Accept", "Got it", "OK",
	"Allow all", "Allow All", "Consent", "Continue", "I accept",
}

// runAction dispatches a single action (a ScrapingAction or a BrowserAction)
// and writes its output (if any)
// under the §4.4 key scheme. outputs is mutated in place.
func (w *browserWorker) runAction(ctx context.Context, action models.Action, outputs map[string]interface{}) *models.JobError {
	t := w.timeouts

	switch action.Kind {
	case models.ActionWaitFor:
		// TimeoutMs=0 is meaningful here (spec §8): a single immediate probe,
		// not "use the configured default".
		timeout := rawMs(action.TimeoutMs)
		if jerr := waitForElementReady(ctx, action.Selector, false, timeout, t.CheckInterval); jerr != nil {
			return jerr
		}
		outputs[fmt.Sprintf("waitfor:%s", action.Selector)] = true
		return nil

	case models.ActionFetch:
		// No-op post-initial-navigation, same as the static worker (spec §3).
		return nil

	case models.ActionExtract:
		var values []string
		script := buildExtractScript(action.Selector, action.Attr)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &values)); err != nil {
			return models.ScriptError(fmt.Sprintf("extract failed: %v", err), map[string]interface{}{"selector": action.Selector})
		}
		outputs[fmt.Sprintf("extract:%s", action.Selector)] = values
		return nil

	case models.ActionExtractMultiple:
		var rows []map[string]string
		script := buildExtractMultipleScript(action.Selector, action.Attrs)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &rows)); err != nil {
			return models.ScriptError(fmt.Sprintf("extract_multiple failed: %v", err), map[string]interface{}{"selector": action.Selector})
		}
		outputs[fmt.Sprintf("extract_multiple:%s", action.Selector)] = rows
		return nil

	case models.ActionClick, models.ActionWaitAndClick:
		if jerr := waitForElementReady(ctx, action.Selector, true, t.ElementWait, t.CheckInterval); jerr != nil {
			return jerr
		}
		if err := chromedp.Run(ctx,
			chromedp.ScrollIntoView(action.Selector, chromedp.ByQuery),
			chromedp.Click(action.Selector, chromedp.ByQuery),
		); err != nil {
			return models.ScriptError(fmt.Sprintf("click failed: %v", err), map[string]interface{}{"selector": action.Selector})
		}
		sleep(ctx, ClickSettle)
		verb := "click"
		if action.Kind == models.ActionWaitAndClick {
			verb = "wait_and_click"
		}
		outputs[fmt.Sprintf("%s:%s", verb, action.Selector)] = true
		return nil

	case models.ActionType:
		if jerr := waitForElementReady(ctx, action.Selector, false, t.ElementWait, t.CheckInterval); jerr != nil {
			return jerr
		}
		script := buildTypeScript(action.Selector, action.Text, action.ClearFirst)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
			return models.ScriptError(fmt.Sprintf("type failed: %v", err), map[string]interface{}{"selector": action.Selector})
		}
		sleep(ctx, TypeSettle)
		outputs[fmt.Sprintf("type:%s", action.Selector)] = true
		return nil

	case models.ActionPressKey:
		script := buildPressKeyScript(action.Key)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
			return models.ScriptError(fmt.Sprintf("press_key failed: %v", err), map[string]interface{}{"key": action.Key})
		}
		sleep(ctx, PressKeySettle)
		outputs["press_key"] = true
		return nil

	case models.ActionScroll:
		script := buildScrollScript(action.Scroll)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
			return models.ScriptError(fmt.Sprintf("scroll failed: %v", err), nil)
		}
		sleep(ctx, ScrollSettle)
		outputs["scroll"] = true
		return nil

	case models.ActionScreenshot:
		var buf []byte
		var capture chromedp.Action
		if action.FullPage {
			capture = chromedp.FullScreenshot(&buf, 90)
		} else {
			capture = chromedp.CaptureScreenshot(&buf)
		}
		if err := chromedp.Run(ctx, capture); err != nil {
			return models.BrowserError(fmt.Sprintf("screenshot capture failed: %v", err), nil)
		}
		if err := os.WriteFile(action.Path, buf, 0o644); err != nil {
			return models.BrowserError(fmt.Sprintf("screenshot write failed: %v", err), map[string]interface{}{"path": action.Path})
		}
		outputs["screenshot"] = action.Path
		return nil

	case models.ActionHover:
		if jerr := waitForElementReady(ctx, action.Selector, false, t.ElementWait, t.CheckInterval); jerr != nil {
			return jerr
		}
		script := buildHoverScript(action.Selector)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
			return models.ScriptError(fmt.Sprintf("hover failed: %v", err), map[string]interface{}{"selector": action.Selector})
		}
		outputs[fmt.Sprintf("hover:%s", action.Selector)] = true
		return nil

	case models.ActionSelect:
		if jerr := waitForElementReady(ctx, action.Selector, false, t.ElementWait, t.CheckInterval); jerr != nil {
			return jerr
		}
		var result selectResult
		script := buildSelectScript(action.Selector, action.Value)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &result)); err != nil {
			return models.ScriptError(fmt.Sprintf("select failed: %v", err), map[string]interface{}{"selector": action.Selector})
		}
		if !result.Matched {
			return models.ScriptError("no matching option for select", map[string]interface{}{
				"selector": action.Selector, "value": action.Value, "available": result.Available,
			})
		}
		outputs[fmt.Sprintf("select:%s", action.Selector)] = true
		return nil

	case models.ActionSetCookie:
		script := buildSetCookieScript(action.CookieName, action.CookieValue, action.CookieDomain)
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
			return models.ScriptError(fmt.Sprintf("set_cookie failed: %v", err), map[string]interface{}{"name": action.CookieName})
		}
		outputs[fmt.Sprintf("set_cookie:%s", action.CookieName)] = true
		return nil

	case models.ActionExecuteScript:
		var value interface{}
		if err := chromedp.Run(ctx, chromedp.Evaluate(action.Script, &value)); err != nil {
			return models.ScriptError(fmt.Sprintf("execute_script failed: %v", err), nil)
		}
		outputs["execute_script"] = value
		return nil

	case models.ActionNavigate:
		if err := chromedp.Run(ctx, chromedp.Navigate(action.URL)); err != nil {
			return models.NavigationError(fmt.Sprintf("navigate to %s failed: %v", action.URL, err), map[string]interface{}{"url": action.URL})
		}
		waitForPageStable(ctx, t.Navigation, t.CheckInterval)
		outputs["navigate"] = true
		return nil

	case models.ActionWaitForNavigation:
		timeout := msWithFallback(action.TimeoutMs, t.Navigation)
		waitForNavigationSettled(ctx, timeout, t.CheckInterval)
		outputs["wait_for_navigation"] = true
		return nil

	case models.ActionHandleCookieBanner:
		timeout := msWithFallback(action.TimeoutMs, t.CookieBanner)
		buttonText, clicked := handleCookieBanner(ctx, timeout, t.CheckInterval)
		if clicked {
			outputs["cookie_banner_handled"] = map[string]interface{}{"clicked": true, "button_text": buttonText}
		} else {
			outputs["cookie_banner_handled"] = map[string]interface{}{"clicked": false, "reason": "not found"}
		}
		return nil

	default:
		return models.UnknownError(fmt.Sprintf("unhandled browser action kind %q", action.Kind), nil)
	}
}

type selectResult struct {
	Matched   bool     `json:"matched"`
	Available []string `json:"available"`
}

type cookieBannerResult struct {
	Clicked    bool   `json:"clicked"`
	ButtonText string `json:"buttonText"`
}

// handleCookieBanner polls for a visible consent button matching
// cookieBannerPhrases, clicks the first match, waits 1s, and returns its
// text plus whether it found one. Times out silently — never a failure
// (spec §4.4.2).
func handleCookieBanner(ctx context.Context, timeout, interval time.Duration) (string, bool) {
	deadline := time.Now().Add(timeout)
	script := buildCookieBannerScript()

	for {
		var result cookieBannerResult
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &result)); err == nil && result.Clicked {
			sleep(ctx, time.Second)
			return result.ButtonText, true
		}

		if time.Now().After(deadline) {
			return "", false
		}

		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(interval):
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// rawMs converts a millisecond count straight to a Duration, honoring zero
// (spec §8: timeout_ms=0 means "probe once, no retry", not "use default").
func rawMs(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// msWithFallback treats ms<=0 as "not specified" and substitutes fallback.
func msWithFallback(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func jsString(s string) string {
	return "\"" + strings.ReplaceAll(strings.ReplaceAll(s, "\\", "\\\\"), "\"", "\\\"") + "\""
}

// jsStringArray renders a Go string slice as a JSON array literal of quoted
// strings, safe to splice into an evaluated script (spec §9: "any selector/
// text/URL passed into an evaluated script must be serialized as a JSON
// literal, not concatenated into source").
func jsStringArray(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = jsString(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func buildTypeScript(selector, text string, clearFirst bool) string {
	clear := "false"
	if clearFirst {
		clear = "true"
	}
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return;
		el.focus();
		const clear = %s;
		if (el.isContentEditable) {
			if (clear) el.textContent = "";
			el.textContent = (el.textContent || "") + %s;
		} else {
			if (clear) el.value = "";
			el.value = (el.value || "") + %s;
		}
		el.dispatchEvent(new Event("input", {bubbles:true}));
		el.dispatchEvent(new Event("change", {bubbles:true}));
		el.dispatchEvent(new Event("blur", {bubbles:true}));
	})()`, jsString(selector), clear, jsString(text), jsString(text))
}

func buildPressKeyScript(key string) string {
	if strings.EqualFold(key, "enter") {
		return `(() => {
			const el = document.activeElement;
			if (el) {
				const form = el.closest ? el.closest("form") : null;
				if (form && form.requestSubmit) { form.requestSubmit(); return; }
				if (form) { form.submit(); return; }
			}
			['keydown','keypress','keyup'].forEach(t => {
				(el || document.body).dispatchEvent(new KeyboardEvent(t, {key:'Enter', bubbles:true}));
			});
		})()`
	}
	return fmt.Sprintf(`(() => {
		const el = document.activeElement || document.body;
		['keydown','keypress','keyup'].forEach(t => {
			el.dispatchEvent(new KeyboardEvent(t, {key:%s, bubbles:true}));
		});
	})()`, jsString(key))
}

func buildScrollScript(target models.ScrollTarget) string {
	switch target.Kind {
	case models.ScrollTargetElement:
		return fmt.Sprintf(`(() => {
			const el = document.querySelector(%s);
			if (el) el.scrollIntoView({block:"center"});
		})()`, jsString(target.Selector))
	case models.ScrollTargetPosition:
		return fmt.Sprintf(`window.scrollTo(%d, %d)`, target.X, target.Y)
	case models.ScrollTargetTop:
		return `window.scrollTo(0, 0)`
	case models.ScrollTargetBottom:
		fallthrough
	default:
		return `window.scrollTo(0, document.body.scrollHeight)`
	}
}

// buildExtractScript mirrors the static worker's Extract semantics (spec
// §4.3/§4.4): trimmed text content when attr is empty, otherwise the
// attribute value ("" when missing), collected in document order.
func buildExtractScript(selector, attr string) string {
	if attr == "" {
		return fmt.Sprintf(`(() => {
			try {
				return Array.from(document.querySelectorAll(%s)).map(e => (e.textContent || "").trim());
			} catch (e) {
				return [];
			}
		})()`, jsString(selector))
	}
	return fmt.Sprintf(`(() => {
		try {
			return Array.from(document.querySelectorAll(%s)).map(e => e.getAttribute(%s) || "");
		} catch (e) {
			return [];
		}
	})()`, jsString(selector), jsString(attr))
}

// buildExtractMultipleScript mirrors the static worker's ExtractMultiple
// semantics: one object per match with one field per requested attribute,
// where the pseudo-attributes "text" and "html" mean trimmed text content
// and inner HTML respectively (spec §4.3/§4.4).
func buildExtractMultipleScript(selector string, attrs []string) string {
	return fmt.Sprintf(`(() => {
		const attrs = %s;
		try {
			return Array.from(document.querySelectorAll(%s)).map(e => {
				const row = {};
				attrs.forEach(attr => {
					if (attr === "text") {
						row[attr] = (e.textContent || "").trim();
					} else if (attr === "html") {
						row[attr] = e.innerHTML || "";
					} else {
						row[attr] = e.getAttribute(attr) || "";
					}
				});
				return row;
			});
		} catch (e) {
			return [];
		}
	})()`, jsStringArray(attrs), jsString(selector))
}

func buildHoverScript(selector string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return;
		['mouseenter','mouseover','mousemove'].forEach(t => {
			el.dispatchEvent(new MouseEvent(t, {bubbles:true}));
		});
	})()`, jsString(selector))
}

func buildSelectScript(selector, value string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el || el.tagName !== "SELECT") return {matched:false, available:[]};
		const options = Array.from(el.options);
		const target = %s;
		const match = options.find(o => o.value === target || o.textContent.trim() === target);
		if (!match) return {matched:false, available:options.map(o => o.value)};
		el.value = match.value;
		el.dispatchEvent(new Event("change", {bubbles:true}));
		el.dispatchEvent(new Event("input", {bubbles:true}));
		return {matched:true, available:options.map(o => o.value)};
	})()`, jsString(selector), jsString(value))
}

func buildSetCookieScript(name, value, domain string) string {
	domainPart := ""
	if domain != "" {
		domainPart = "; domain=" + domain
	}
	return fmt.Sprintf(`document.cookie = %s + "=" + %s + "; path=/%s"`, jsString(name), jsString(value), domainPart)
}

func buildCookieBannerScript() string {
	var phrases strings.Builder
	phrases.WriteString("[")
	for i, p := range cookieBannerPhrases {
		if i > 0 {
			phrases.WriteString(",")
		}
		phrases.WriteString(jsString(strings.ToLower(p)))
	}
	phrases.WriteString("]")

	return fmt.Sprintf(`(() => {
		const phrases = %s;
		const candidates = Array.from(document.querySelectorAll('button, [role="button"], a'));
		for (const el of candidates) {
			const style = window.getComputedStyle(el);
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 || rect.height === 0 || style.display === "none" || style.visibility === "hidden") continue;
			const rawText = (el.textContent || "").trim();
			const text = rawText.toLowerCase();
			if (phrases.some(p => text.includes(p))) {
				el.click();
				return {clicked:true, buttonText:rawText};
			}
		}
		return {clicked:false, buttonText:""};
	})()`, phrases.String())
}
