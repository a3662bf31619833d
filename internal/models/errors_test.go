package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverableErrorDefaults(t *testing.T) {
	cases := []struct {
		name         string
		err          *JobError
		wantRetryMs  uint64
		wantRecovery bool
	}{
		{"fetch_error", FetchError("boom", nil), 1000, true},
		{"timeout_error", TimeoutError("boom", nil), 2000, true},
		{"navigation_error", NavigationError("boom", nil), 1500, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.wantRecovery, c.err.Recoverable())
			ms, ok := c.err.RetryAfter()
			require.True(t, ok)
			assert.Equal(t, c.wantRetryMs, ms)
		})
	}
}

func TestNonRecoverableErrorsHaveNoRetryDelay(t *testing.T) {
	errs := []*JobError{
		ElementNotFoundError("x", nil),
		ScriptError("x", nil),
		BrowserError("x", nil),
		ParsingError("x", nil),
		CaptchaDetectedError("x", nil),
		AuthError("x", nil),
		UnknownError("x", nil),
	}

	for _, e := range errs {
		assert.False(t, e.Recoverable(), e.Category)
		_, ok := e.RetryAfter()
		assert.False(t, ok, e.Category)
	}
}

func TestRateLimitErrorCarriesExplicitDelay(t *testing.T) {
	e := RateLimitError("slow down", nil, 5000)
	assert.True(t, e.Recoverable())
	ms, ok := e.RetryAfter()
	require.True(t, ok)
	assert.Equal(t, uint64(5000), ms)
}

func TestJobErrorRoundTripsThroughJSON(t *testing.T) {
	original := ElementNotFoundError("not found", map[string]interface{}{"selector": "#x"})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded JobError
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Category, decoded.Category)
	assert.Equal(t, original.Message, decoded.Message)
	assert.Equal(t, original.IsRecoverable, decoded.IsRecoverable)
	assert.Equal(t, original.Context["selector"], decoded.Context["selector"])
}

func TestNilJobErrorIsSafe(t *testing.T) {
	var e *JobError
	assert.Equal(t, "", e.Error())
	assert.False(t, e.Recoverable())
	_, ok := e.RetryAfter()
	assert.False(t, ok)
}
