package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaver-engine/weaver/internal/models"
)

func TestIsContextDestroyedMatchesKnownPhrasings(t *testing.T) {
	assert.True(t, isContextDestroyed(errors.New("Execution context was destroyed.")))
	assert.True(t, isContextDestroyed(errors.New("cannot find context with specified id")))
	assert.False(t, isContextDestroyed(nil))
	assert.False(t, isContextDestroyed(errors.New("connection refused")))
}

func TestClassifyElementTimeoutNeverExisted(t *testing.T) {
	jerr := classifyElementTimeout("#missing", elementProbe{}, false)
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryElementNotFound, jerr.Category)
	assert.Equal(t, "#missing", jerr.Context["selector"])
	assert.NotContains(t, jerr.Context, "hint")
}

func TestClassifyElementTimeoutInvisible(t *testing.T) {
	jerr := classifyElementTimeout("#hidden", elementProbe{Exists: true, Visible: false}, false)
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryElementNotFound, jerr.Category)
	assert.Equal(t, "hidden by CSS", jerr.Context["hint"])
}

func TestClassifyElementTimeoutObscured(t *testing.T) {
	jerr := classifyElementTimeout("#covered", elementProbe{
		Exists: true, Visible: true, Obscured: true,
		ObscuringTag: "div", ObscuringClass: "banner",
	}, false)
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryElementNotFound, jerr.Category)
	assert.Equal(t, "div.banner", jerr.Context["obscured_by"])
	assert.Equal(t, "handle a cookie banner first", jerr.Context["suggestion"])
}

func TestClassifyElementTimeoutDisabledOnlyWhenCheckingClickable(t *testing.T) {
	probe := elementProbe{Exists: true, Visible: true, Disabled: true}

	jerr := classifyElementTimeout("#btn", probe, true)
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryElementNotFound, jerr.Category)

	jerr = classifyElementTimeout("#btn", probe, false)
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryTimeout, jerr.Category)
}

func TestClassifyElementTimeoutReadyButStillTimedOutFallsBackToTimeout(t *testing.T) {
	jerr := classifyElementTimeout("#flaky", elementProbe{Exists: true, Visible: true}, false)
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryTimeout, jerr.Category)
}

func TestSprintfScriptEscapesQuotesAndBackslashes(t *testing.T) {
	out := sprintfScript(`sel = %q;`, `div[data-x="a\b"]`)
	assert.Equal(t, `sel = "div[data-x=\"a\\b\"]";`, out)
}

func TestSprintfScriptPlainSelector(t *testing.T) {
	out := sprintfScript(`document.querySelector(%q)`, "#ok")
	assert.Equal(t, `document.querySelector("#ok")`, out)
}
