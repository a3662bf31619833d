package browser

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/weaver-engine/weaver/internal/models"
)

// captchaKeywords is the fixed, case-insensitive substring set checked
// against the concatenated body+documentElement text.
var captchaKeywords = []string{
	"verify you are human",
	"complete the captcha",
	"prove you are not a robot",
	"i'm not a robot",
	"im not a robot",
	"unusual traffic",
	"automated requests",
	"our systems have detected unusual traffic",
	"please verify you are a human",
	"suspicious activity",
	"verify that you are not a robot",
	"security check",
	"are you a robot",
}

// captchaTitleIndicators is the fixed page-title indicator set.
var captchaTitleIndicators = []string{
	"captcha",
	"security check",
	"verify",
	"unusual traffic",
	"attention required",
}

// captchaURLIndicators is the fixed URL/path indicator set.
var captchaURLIndicators = []string{
	"captcha",
	"/sorry",
	"ipv6_or_unusual_traffic",
	"challenge",
	"/cdn-cgi/challenge",
}

// captchaSelectors are known CAPTCHA widget selectors, checked for a visible
// match before falling back to the generic [*captcha*] attribute probe.
var captchaSelectors = []string{
	"iframe[src*='recaptcha']",
	"div.g-recaptcha",
	"iframe[src*='hcaptcha']",
	"div.h-captcha",
	"#cf-challenge-running",
	"div.cf-turnstile",
	"[class*='captcha']",
	"[id*='captcha']",
}

type captchaProbe struct {
	SelectorMatch string `json:"selectorMatch"`
	BodyText      string `json:"bodyText"`
}

const captchaProbeScript = `(() => {
	const selectors = %s;
	let matched = "";
	for (const sel of selectors) {
		try {
			const el = document.querySelector(sel);
			if (el) {
				const style = window.getComputedStyle(el);
				const rect = el.getBoundingClientRect();
				if (rect.width > 0 && rect.height > 0 && style.display !== "none" && style.visibility !== "hidden") {
					matched = sel;
					break;
				}
			}
		} catch (e) {}
	}
	const text = (document.body ? document.body.innerText : "") + " " + (document.documentElement ? document.documentElement.innerText : "");
	return {selectorMatch: matched, bodyText: text.slice(0, 4000)};
})()`

// detectCaptcha runs the CAPTCHA probe once, after navigation stabilizes and
// before actions begin (spec §4.4.3). Returns nil if nothing was detected.
func detectCaptcha(ctx context.Context, pageTitle, pageURL string) *models.JobError {
	script := buildCaptchaProbeScript()

	var probe captchaProbe
	_ = chromedp.Run(ctx, chromedp.Evaluate(script, &probe))

	return evaluateCaptchaIndicators(probe.SelectorMatch, probe.BodyText, pageTitle, pageURL)
}

// evaluateCaptchaIndicators applies spec §4.4.3's detection rule to an
// already-captured probe: detected if any of a visible selector match, a
// keyword match, a title indicator, or a URL indicator fired. Pulled out of
// detectCaptcha so the matching logic is testable without a live page.
func evaluateCaptchaIndicators(selectorMatch, bodyText, pageTitle, pageURL string) *models.JobError {
	lowerBody := strings.ToLower(bodyText)
	lowerTitle := strings.ToLower(pageTitle)
	lowerURL := strings.ToLower(pageURL)

	var matchedKeywords []string
	for _, kw := range captchaKeywords {
		if strings.Contains(lowerBody, kw) {
			matchedKeywords = append(matchedKeywords, kw)
		}
	}

	titleIndicator := ""
	for _, ind := range captchaTitleIndicators {
		if strings.Contains(lowerTitle, ind) {
			titleIndicator = ind
			break
		}
	}

	urlIndicator := ""
	for _, ind := range captchaURLIndicators {
		if strings.Contains(lowerURL, ind) {
			urlIndicator = ind
			break
		}
	}

	titleMatch := titleIndicator != ""
	urlMatch := urlIndicator != ""

	selectorMatched := selectorMatch != ""
	if !selectorMatched && len(matchedKeywords) == 0 && !titleMatch && !urlMatch {
		return nil
	}

	confidence := "medium"
	var types []string
	if selectorMatched {
		confidence = "high"
		types = append(types, selectorMatch)
	}

	sample := bodyText
	if len(sample) > 200 {
		sample = sample[:200]
	}

	return models.CaptchaDetectedError("CAPTCHA detected on page", map[string]interface{}{
		"types":           types,
		"keywords":        matchedKeywords,
		"page_title":      pageTitle,
		"url":             pageURL,
		"title_match":     titleMatch,
		"url_match":       urlMatch,
		"title_indicator": titleIndicator,
		"url_indicator":   urlIndicator,
		"body_sample":     sample,
		"confidence":      confidence,
	})
}

func buildCaptchaProbeScript() string {
	var b strings.Builder
	b.WriteString("[")
	for i, s := range captchaSelectors {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\"")
	}
	b.WriteString("]")
	return strings.Replace(captchaProbeScript, "%s", b.String(), 1)
}
