// Package healing implements the error-healing policy (spec §4.5, C5): a
// pure, side-effect-free decision of whether a failed job should be retried,
// retried after a delay, skipped, or aborted.
package healing

import "github.com/weaver-engine/weaver/internal/models"

// Verdict is the healing decision (spec's HealingAction).
type Verdict int

const (
	Retry Verdict = iota
	RetryAfter
	Skip
	Abort
)

func (v Verdict) String() string {
	switch v {
	case Retry:
		return "retry"
	case RetryAfter:
		return "retry_after"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Decision is the full healing verdict: a Verdict plus the delay, in
// milliseconds, when Verdict is RetryAfter.
type Decision struct {
	Verdict Verdict
	DelayMs uint64
}

// Context is everything the healer needs to decide (spec §4.5's "context").
type Context struct {
	JobID       string
	Err         *models.JobError
	Attempt     int
	MaxAttempts int
}

// Healer decides the fate of a failed job. Implementations must be
// side-effect-free and must not block.
type Healer interface {
	Heal(ctx Context) Decision
}

// DefaultPolicy implements spec §4.5's four-step decision table, with a
// configurable max_retries (default 3, matching the scheduler's own
// default — spec §4.6).
type DefaultPolicy struct {
	MaxRetries int
}

// NewDefaultPolicy returns the policy with the spec-default max_retries=3.
func NewDefaultPolicy() *DefaultPolicy {
	return &DefaultPolicy{MaxRetries: 3}
}

// Heal implements the four-step table in spec §4.5:
//  1. attempt ≥ max_attempts → Skip
//  2. ¬error.recoverable → Skip
//  3. error.retry_after_ms present → RetryAfter(delay)
//  4. else → Retry
func (p *DefaultPolicy) Heal(ctx Context) Decision {
	maxAttempts := ctx.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = p.MaxRetries
	}

	if ctx.Attempt >= maxAttempts {
		return Decision{Verdict: Skip}
	}

	if !ctx.Err.Recoverable() {
		return Decision{Verdict: Skip}
	}

	if delayMs, ok := ctx.Err.RetryAfter(); ok {
		return Decision{Verdict: RetryAfter, DelayMs: delayMs}
	}

	return Decision{Verdict: Retry}
}
