package healing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaver-engine/weaver/internal/models"
)

func TestHealDefaultPolicyBoundaries(t *testing.T) {
	policy := NewDefaultPolicy()

	t.Run("non-recoverable at attempt 1 skips", func(t *testing.T) {
		d := policy.Heal(Context{Err: models.ElementNotFoundError("x", nil), Attempt: 1})
		assert.Equal(t, Skip, d.Verdict)
	})

	t.Run("recoverable without retry_after_ms retries immediately", func(t *testing.T) {
		e := &models.JobError{Category: models.CategoryNetwork, IsRecoverable: true}
		d := policy.Heal(Context{Err: e, Attempt: 1})
		assert.Equal(t, Retry, d.Verdict)
	})

	t.Run("recoverable with retry_after_ms=500 at attempt 2 retries after delay", func(t *testing.T) {
		e := models.RateLimitError("slow down", nil, 500)
		d := policy.Heal(Context{Err: e, Attempt: 2})
		assert.Equal(t, RetryAfter, d.Verdict)
		assert.Equal(t, uint64(500), d.DelayMs)
	})

	t.Run("any error at attempt equal to max_retries skips", func(t *testing.T) {
		d := policy.Heal(Context{Err: models.FetchError("x", nil), Attempt: 3})
		assert.Equal(t, Skip, d.Verdict)
	})

	t.Run("attempt beyond max_retries still skips", func(t *testing.T) {
		d := policy.Heal(Context{Err: models.FetchError("x", nil), Attempt: 10})
		assert.Equal(t, Skip, d.Verdict)
	})

	t.Run("explicit MaxAttempts overrides policy default", func(t *testing.T) {
		d := policy.Heal(Context{Err: models.FetchError("x", nil), Attempt: 1, MaxAttempts: 1})
		assert.Equal(t, Skip, d.Verdict)
	})
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "retry", Retry.String())
	assert.Equal(t, "retry_after", RetryAfter.String())
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "abort", Abort.String())
}
