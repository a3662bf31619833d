// Package staticworker implements the Static HTML Worker (spec §4.3, C3):
// an HTTP GET followed by CSS-selector extraction over the parsed document.
// No waiting, no JavaScript — WaitFor here is a single static probe.
package staticworker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/common"
	"github.com/weaver-engine/weaver/internal/models"
)

// Worker is the static HTML execution backend.
type Worker struct {
	client *http.Client
	logger arbor.ILogger
}

// New creates a static HTML worker. A nil client gets common's
// request-timeout fallback, matching the teacher's makeRequest fallback
// chain.
func New(client *http.Client, logger arbor.ILogger) *Worker {
	if client == nil {
		client = &http.Client{Timeout: common.RequestTimeoutFallback}
	}
	return &Worker{client: client, logger: logger}
}

// Execute runs the job's ScrapingAction sequence against the static HTML at
// job.URL. Any BrowserAction in the sequence is a hard, classified failure —
// this backend cannot drive a browser (spec §4.3 step 4).
func (w *Worker) Execute(ctx context.Context, job *models.Job) (*models.JobResult, *models.JobError) {
	contextLogger := w.logger.WithContextWriter(job.ID)

	for i, action := range job.Actions {
		if action.Kind.IsBrowserOnly() {
			return nil, models.UnknownError(
				"parser cannot execute browser actions",
				map[string]interface{}{"job_id": job.ID, "action_index": i, "action_kind": action.Kind},
			)
		}
	}

	doc, err := w.fetchDocument(ctx, job.URL)
	if err != nil {
		return nil, err
	}

	result := models.NewJobResult(job.ID)

	for _, action := range job.Actions {
		if jerr := w.runAction(contextLogger, doc, action, result); jerr != nil {
			return nil, jerr
		}
	}

	return result, nil
}

func (w *Worker) fetchDocument(ctx context.Context, url string) (*goquery.Document, *models.JobError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.FetchError(fmt.Sprintf("failed to build request: %v", err), map[string]interface{}{"url": url})
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, models.FetchError(fmt.Sprintf("GET %s failed: %v", url, err), map[string]interface{}{"url": url})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.FetchError(
			fmt.Sprintf("GET %s returned HTTP %d", url, resp.StatusCode),
			map[string]interface{}{"url": url, "status_code": resp.StatusCode},
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.FetchError(fmt.Sprintf("failed to read response body: %v", err), map[string]interface{}{"url": url})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, models.ParsingError(fmt.Sprintf("failed to parse HTML: %v", err), map[string]interface{}{"url": url})
	}

	return doc, nil
}

func (w *Worker) runAction(logger arbor.ILogger, doc *goquery.Document, action models.Action, result *models.JobResult) *models.JobError {
	switch action.Kind {
	case models.ActionWaitFor:
		// No actual waiting: a static parser has one snapshot of the DOM.
		exists := doc.Find(action.Selector).Length() > 0
		result.Output[fmt.Sprintf("waitfor:%s", action.Selector)] = exists
		return nil

	case models.ActionExtract:
		values := make([]string, 0)
		doc.Find(action.Selector).Each(func(_ int, sel *goquery.Selection) {
			if action.Attr == "" {
				values = append(values, strings.TrimSpace(sel.Text()))
			} else {
				attrVal, _ := sel.Attr(action.Attr)
				values = append(values, attrVal)
			}
		})
		result.Output[fmt.Sprintf("extract:%s", action.Selector)] = values
		return nil

	case models.ActionExtractMultiple:
		rows := make([]map[string]string, 0)
		doc.Find(action.Selector).Each(func(_ int, sel *goquery.Selection) {
			row := make(map[string]string, len(action.Attrs))
			for _, attr := range action.Attrs {
				switch attr {
				case "text":
					row[attr] = strings.TrimSpace(sel.Text())
				case "html":
					h, _ := sel.Html()
					row[attr] = h
				default:
					v, _ := sel.Attr(attr)
					row[attr] = v
				}
			}
			rows = append(rows, row)
		})
		result.Output[fmt.Sprintf("extract_multiple:%s", action.Selector)] = rows
		return nil

	case models.ActionFetch:
		// No-op post-initial-navigation (spec §3).
		return nil

	default:
		logger.Warn().Str("action_kind", string(action.Kind)).Msg("Unhandled scraping action kind")
		return models.UnknownError(fmt.Sprintf("unhandled action kind %q", action.Kind), nil)
	}
}
