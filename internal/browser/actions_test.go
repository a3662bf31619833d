package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/weaver-engine/weaver/internal/models"
)

func TestRawMsHonorsZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), rawMs(0))
	assert.Equal(t, 250*time.Millisecond, rawMs(250))
}

func TestMsWithFallbackSubstitutesOnZeroOrNegative(t *testing.T) {
	assert.Equal(t, 5*time.Second, msWithFallback(0, 5*time.Second))
	assert.Equal(t, 5*time.Second, msWithFallback(-1, 5*time.Second))
	assert.Equal(t, 250*time.Millisecond, msWithFallback(250, 5*time.Second))
}

func TestJSStringEscapesQuotesAndBackslashes(t *testing.T) {
	assert.Equal(t, `"hi"`, jsString("hi"))
	assert.Equal(t, `"a\"b"`, jsString(`a"b`))
	assert.Equal(t, `"a\\b"`, jsString(`a\b`))
}

func TestBuildScrollScriptElement(t *testing.T) {
	script := buildScrollScript(models.ScrollTarget{Kind: models.ScrollTargetElement, Selector: "#footer"})
	assert.Contains(t, script, `document.querySelector("#footer")`)
	assert.Contains(t, script, "scrollIntoView")
}

func TestBuildScrollScriptPosition(t *testing.T) {
	script := buildScrollScript(models.ScrollTarget{Kind: models.ScrollTargetPosition, X: 10, Y: 20})
	assert.Equal(t, "window.scrollTo(10, 20)", script)
}

func TestBuildScrollScriptTop(t *testing.T) {
	script := buildScrollScript(models.ScrollTarget{Kind: models.ScrollTargetTop})
	assert.Equal(t, "window.scrollTo(0, 0)", script)
}

func TestBuildScrollScriptBottomAndDefault(t *testing.T) {
	bottom := buildScrollScript(models.ScrollTarget{Kind: models.ScrollTargetBottom})
	assert.Equal(t, "window.scrollTo(0, document.body.scrollHeight)", bottom)

	unknown := buildScrollScript(models.ScrollTarget{Kind: models.ScrollTargetKind("weird")})
	assert.Equal(t, bottom, unknown)
}

func TestBuildSetCookieScriptWithAndWithoutDomain(t *testing.T) {
	withDomain := buildSetCookieScript("session", "abc", "example.com")
	assert.Contains(t, withDomain, "; domain=example.com")

	withoutDomain := buildSetCookieScript("session", "abc", "")
	assert.NotContains(t, withoutDomain, "domain=")
}

func TestBuildPressKeyScriptEnterIsCaseInsensitiveSpecialCased(t *testing.T) {
	script := buildPressKeyScript("Enter")
	assert.Contains(t, script, "requestSubmit")
	assert.Contains(t, buildPressKeyScript("enter"), "requestSubmit")

	other := buildPressKeyScript("Tab")
	assert.NotContains(t, other, "requestSubmit")
	assert.Contains(t, other, `"Tab"`)
}

func TestBuildCookieBannerScriptEmbedsLowercasedPhrases(t *testing.T) {
	script := buildCookieBannerScript()
	assert.Contains(t, script, `"accept all"`)
	assert.Contains(t, script, `"i agree"`)
}

func TestJSStringArrayRendersJSONLiteral(t *testing.T) {
	assert.Equal(t, `["text","html"]`, jsStringArray([]string{"text", "html"}))
	assert.Equal(t, `[]`, jsStringArray(nil))
}

func TestBuildExtractScriptTextContentByDefault(t *testing.T) {
	script := buildExtractScript("h1", "")
	assert.Contains(t, script, `document.querySelectorAll("h1")`)
	assert.Contains(t, script, "textContent")
	assert.NotContains(t, script, "getAttribute")
}

func TestBuildExtractScriptAttrWhenRequested(t *testing.T) {
	script := buildExtractScript("a.link", "href")
	assert.Contains(t, script, `document.querySelectorAll("a.link")`)
	assert.Contains(t, script, `getAttribute("href")`)
}

func TestBuildExtractMultipleScriptEmbedsAttrsAsJSONArray(t *testing.T) {
	script := buildExtractMultipleScript(".row", []string{"text", "href"})
	assert.Contains(t, script, `["text","href"]`)
	assert.Contains(t, script, `document.querySelectorAll(".row")`)
	assert.Contains(t, script, "innerHTML")
}
