package models

import "fmt"

// ErrorCategory is the fixed taxonomy from spec §3/§4.1. The scheduler's
// healing decision is driven entirely by Recoverable and RetryAfterMs, never
// by Category directly, but Category is what shows up in logs and in the
// context bag for diagnosis.
type ErrorCategory string

const (
	CategoryNetwork         ErrorCategory = "network"
	CategoryElementNotFound ErrorCategory = "element_not_found"
	CategoryScriptExecution ErrorCategory = "script_execution"
	CategoryNavigation      ErrorCategory = "navigation"
	CategoryBrowser         ErrorCategory = "browser"
	CategoryParsing         ErrorCategory = "parsing"
	CategoryTimeout         ErrorCategory = "timeout"
	CategoryAuth            ErrorCategory = "auth"
	CategoryRateLimit       ErrorCategory = "rate_limit"
	CategoryCaptcha         ErrorCategory = "captcha"
	CategoryUnknown         ErrorCategory = "unknown"
)

// JobError is the classified, serializable error record spec §3/§7 require.
// It implements error (so it can flow through ordinary Go error-handling)
// and exposes Recoverable()/RetryAfter() as plain methods — the same
// "one method to branch on" shape as docs-crawler's failure.ClassifiedError,
// adapted to carry a retry delay hint as well as a bool.
type JobError struct {
	Category     ErrorCategory          `json:"category"`
	Message      string                 `json:"message"`
	Context      map[string]interface{} `json:"context,omitempty"`
	IsRecoverable bool                  `json:"recoverable"`
	RetryAfterMs *uint64                `json:"retry_after_ms,omitempty"`
}

func (e *JobError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Recoverable reports whether the healing policy may retry this error at all.
func (e *JobError) Recoverable() bool {
	return e != nil && e.IsRecoverable
}

// RetryAfter returns the suggested retry delay in milliseconds and whether
// one was set. Errors without a delay hint retry immediately (subject to the
// healing policy's own verdict).
func (e *JobError) RetryAfter() (uint64, bool) {
	if e == nil || e.RetryAfterMs == nil {
		return 0, false
	}
	return *e.RetryAfterMs, true
}

func retryAfterPtr(ms uint64) *uint64 {
	return &ms
}

func withContext(ctx map[string]interface{}) map[string]interface{} {
	if ctx == nil {
		return map[string]interface{}{}
	}
	return ctx
}

// Convenience constructors pre-set the recoverable/retry_after_ms defaults
// from spec §4.1's table. Each one accepts a context bag so call sites never
// hand-build a JobError field by field.

func FetchError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category:      CategoryNetwork,
		Message:       message,
		Context:       withContext(ctx),
		IsRecoverable: true,
		RetryAfterMs:  retryAfterPtr(1000),
	}
}

func TimeoutError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category:      CategoryTimeout,
		Message:       message,
		Context:       withContext(ctx),
		IsRecoverable: true,
		RetryAfterMs:  retryAfterPtr(2000),
	}
}

func NavigationError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category:      CategoryNavigation,
		Message:       message,
		Context:       withContext(ctx),
		IsRecoverable: true,
		RetryAfterMs:  retryAfterPtr(1500),
	}
}

func ElementNotFoundError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryElementNotFound,
		Message:  message,
		Context:  withContext(ctx),
	}
}

func ScriptError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryScriptExecution,
		Message:  message,
		Context:  withContext(ctx),
	}
}

func BrowserError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryBrowser,
		Message:  message,
		Context:  withContext(ctx),
	}
}

func ParsingError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryParsing,
		Message:  message,
		Context:  withContext(ctx),
	}
}

func CaptchaDetectedError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryCaptcha,
		Message:  message,
		Context:  withContext(ctx),
	}
}

func AuthError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryAuth,
		Message:  message,
		Context:  withContext(ctx),
	}
}

func RateLimitError(message string, ctx map[string]interface{}, retryAfterMs uint64) *JobError {
	return &JobError{
		Category:      CategoryRateLimit,
		Message:       message,
		Context:       withContext(ctx),
		IsRecoverable: true,
		RetryAfterMs:  retryAfterPtr(retryAfterMs),
	}
}

func UnknownError(message string, ctx map[string]interface{}) *JobError {
	return &JobError{
		Category: CategoryUnknown,
		Message:  message,
		Context:  withContext(ctx),
	}
}
