package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaver-engine/weaver/internal/models"
)

func TestEvaluateCaptchaIndicatorsNoSignalReturnsNil(t *testing.T) {
	jerr := evaluateCaptchaIndicators("", "welcome to the site", "Home", "http://example.com/")
	assert.Nil(t, jerr)
}

func TestEvaluateCaptchaIndicatorsSelectorMatchIsHighConfidence(t *testing.T) {
	jerr := evaluateCaptchaIndicators("div.g-recaptcha", "welcome", "Home", "http://example.com/")
	require.NotNil(t, jerr)
	assert.Equal(t, models.CategoryCaptcha, jerr.Category)
	assert.Equal(t, "high", jerr.Context["confidence"])
	assert.Equal(t, []string{"div.g-recaptcha"}, jerr.Context["types"])
}

func TestEvaluateCaptchaIndicatorsKeywordOnlyIsMediumConfidence(t *testing.T) {
	jerr := evaluateCaptchaIndicators("", "Please verify you are a human before continuing", "Home", "http://example.com/")
	require.NotNil(t, jerr)
	assert.Equal(t, "medium", jerr.Context["confidence"])
	assert.Contains(t, jerr.Context["keywords"], "please verify you are a human")
}

func TestEvaluateCaptchaIndicatorsTitleMatch(t *testing.T) {
	jerr := evaluateCaptchaIndicators("", "nothing interesting", "Attention Required! | Cloudflare", "http://example.com/")
	require.NotNil(t, jerr)
	assert.Equal(t, true, jerr.Context["title_match"])
	assert.Equal(t, "attention required", jerr.Context["title_indicator"])
}

func TestEvaluateCaptchaIndicatorsURLMatch(t *testing.T) {
	jerr := evaluateCaptchaIndicators("", "nothing interesting", "Home", "http://example.com/sorry/index")
	require.NotNil(t, jerr)
	assert.Equal(t, true, jerr.Context["url_match"])
	assert.Equal(t, "/sorry", jerr.Context["url_indicator"])
}

func TestEvaluateCaptchaIndicatorsBodySampleTruncatedAt200(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "are you a robot "
	}
	jerr := evaluateCaptchaIndicators("", long, "Home", "http://example.com/")
	require.NotNil(t, jerr)
	assert.LessOrEqual(t, len(jerr.Context["body_sample"].(string)), 200)
}
