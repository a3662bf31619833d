package models

import "fmt"

// BrowserType selects the driver backend for a Job's browser_config. Firefox
// is named per spec §3/§9 but has no implementation — the browser package's
// launchers reject it with an error when a job is launched rather than
// pretending to support it.
type BrowserType string

const (
	BrowserChromium BrowserType = "chromium"
	BrowserFirefox  BrowserType = "firefox"
)

// Viewport is the optional browser window size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BrowserConfig holds per-job browser backend options (spec §3).
type BrowserConfig struct {
	BrowserType   BrowserType `json:"browser_type"`
	Headless      bool        `json:"headless"`
	Viewport      *Viewport   `json:"viewport,omitempty"`
	FailOnCaptcha bool        `json:"fail_on_captcha"`
}

// DefaultBrowserConfig matches the teacher's habit of giving every config
// struct a sane zero-config constructor (ChromeDPPoolConfig, CrawlConfig).
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowserType: BrowserChromium,
		Headless:    true,
	}
}

// Job is the immutable unit of work described in spec §3. Callers are
// responsible for ID uniqueness; the scheduler treats a resubmission of the
// same ID as a retry of the same logical job (its RetryCounts entry, if any,
// carries over).
type Job struct {
	ID            string         `json:"id"`
	URL           string         `json:"url"`
	UseBrowser    bool           `json:"use_browser"`
	Actions       []Action       `json:"actions"`
	BrowserConfig *BrowserConfig `json:"browser_config,omitempty"`
}

// Validate enforces the one structural invariant spec §3 names: a
// use_browser=false job may not carry a BrowserAction. It returns a
// classified JobError (category Unknown) rather than a bare error so the
// scheduler can route it through the normal JobError plumbing without type
// assertions.
func (j *Job) Validate() *JobError {
	if j.UseBrowser {
		return nil
	}
	for i, a := range j.Actions {
		if a.Kind.IsBrowserOnly() {
			return UnknownError(
				fmt.Sprintf("job %q is not browser-enabled but action %d (%s) is browser-only", j.ID, i, a.Kind),
				map[string]interface{}{
					"job_id":       j.ID,
					"action_index": i,
					"action_kind":  a.Kind,
				},
			)
		}
	}
	return nil
}
