// Package browser implements the Browser Worker (spec §4.4, C4): drives a
// headless Chromium-class browser through chromedp, running the per-job
// state machine Launching → Opening → Navigating → Stabilizing →
// [CaptchaCheck?] → RunningActions(i) → Done | Failed.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/models"
)

// Worker is the browser execution backend. It owns a Launcher (by default a
// FreshLauncher, one isolated browser process per job) and a Timeouts
// preset.
type Worker struct {
	launcher Launcher
	timeouts Timeouts
	logger   arbor.ILogger
}

// New creates a browser worker with the given launcher and timeout preset.
func New(launcher Launcher, timeouts Timeouts, logger arbor.ILogger) *Worker {
	return &Worker{launcher: launcher, timeouts: timeouts, logger: logger}
}

// browserWorker bundles the per-job state runAction needs, so actions.go's
// methods don't have to thread timeouts through every call.
type browserWorker struct {
	timeouts Timeouts
}

// Execute drives job.URL and job.Actions through a fresh (or pooled) browser
// instance end to end, implementing the Execute(job) → JobResult | JobError
// contract shared with the static worker.
func (w *Worker) Execute(ctx context.Context, job *models.Job) (*models.JobResult, *models.JobError) {
	contextLogger := w.logger.WithContextWriter(job.ID)

	cfg := models.DefaultBrowserConfig()
	if job.BrowserConfig != nil {
		cfg = *job.BrowserConfig
	}

	contextLogger.Debug().Str("url", job.URL).Msg("Launching browser instance")
	session, err := w.launcher.Launch(ctx, cfg)
	if err != nil {
		return nil, models.BrowserError(fmt.Sprintf("failed to launch browser: %v", err), map[string]interface{}{"job_id": job.ID})
	}
	defer session.Close()

	browserCtx := session.Ctx

	contextLogger.Debug().Msg("Navigating to initial URL")
	if err := chromedp.Run(browserCtx, chromedp.Navigate(job.URL)); err != nil {
		return nil, models.NavigationError(fmt.Sprintf("navigation to %s failed: %v", job.URL, err), map[string]interface{}{"url": job.URL})
	}

	contextLogger.Debug().Msg("Waiting for page stability")
	waitForPageStable(browserCtx, w.timeouts.PageStable, w.timeouts.CheckInterval)

	if cfg.FailOnCaptcha {
		var title, url string
		_ = chromedp.Run(browserCtx, chromedp.Title(&title), chromedp.Location(&url))
		if jerr := detectCaptcha(browserCtx, title, url); jerr != nil {
			contextLogger.Warn().Str("category", string(jerr.Category)).Msg("CAPTCHA detected, failing job")
			return nil, jerr
		}
	}

	bw := &browserWorker{timeouts: w.timeouts}
	result := models.NewJobResult(job.ID)

	for i, action := range job.Actions {
		if jerr := bw.runAction(browserCtx, action, result.Output); jerr != nil {
			contextLogger.Warn().
				Int("action_index", i).
				Str("action_kind", string(action.Kind)).
				Str("category", string(jerr.Category)).
				Msg("Action failed, terminating job")
			return nil, jerr
		}
	}

	contextLogger.Debug().Int("action_count", len(job.Actions)).Msg("All actions completed")
	return result, nil
}
