package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/models"
)

// Session is a live browser handle for exactly one job. Close must be called
// exactly once when the job is done (spec §4.4: "Tear down the browser when
// the job completes").
type Session struct {
	Ctx   context.Context
	Close func()
}

// Launcher obtains a Session for a job. Two implementations exist:
// FreshLauncher (the spec §4.4 default: one browser process per job, fully
// isolated) and PooledLauncher (spec §9's design note: a bounded pool of
// browser processes, each job getting a fresh incognito-style browser
// context within one of them).
type Launcher interface {
	Launch(ctx context.Context, cfg models.BrowserConfig) (*Session, error)
}

// FreshLauncher launches a brand-new Chromium process with a unique,
// isolated user-data directory per job, grounded in the teacher's
// ChromeDPPool.createBrowserInstance — the same allocator flags, minus the
// pooling. This is the design's isolation-over-efficiency default (spec §5:
// "a job's DOM state would otherwise leak into the next").
type FreshLauncher struct {
	logger arbor.ILogger
}

func NewFreshLauncher(logger arbor.ILogger) *FreshLauncher {
	return &FreshLauncher{logger: logger}
}

func (l *FreshLauncher) Launch(ctx context.Context, cfg models.BrowserConfig) (*Session, error) {
	if cfg.BrowserType == models.BrowserFirefox {
		return nil, fmt.Errorf("firefox backend is named in BrowserType but not implemented")
	}

	userDataDir, err := os.MkdirTemp("", "weaver-chrome-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to create isolated user-data directory: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserDataDir(userDataDir),
	)
	if cfg.Viewport != nil {
		opts = append(opts, chromedp.WindowSize(cfg.Viewport.Width, cfg.Viewport.Height))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	closed := false
	var closeMu sync.Mutex
	closeFn := func() {
		closeMu.Lock()
		defer closeMu.Unlock()
		if closed {
			return
		}
		closed = true
		browserCancel()
		allocatorCancel()
		if err := os.RemoveAll(userDataDir); err != nil {
			l.logger.Warn().Err(err).Str("dir", userDataDir).Msg("Failed to remove user-data directory")
		}
	}

	l.logger.Debug().Str("user_data_dir", userDataDir).Bool("headless", cfg.Headless).Msg("Launched isolated browser instance")

	return &Session{Ctx: browserCtx, Close: closeFn}, nil
}

// PooledLauncher keeps up to poolSize long-lived browser processes alive and
// hands each job a fresh incognito browser context inside one of them,
// round-robin. This trades process-launch latency for weaker isolation
// (spec §9 permits this provided per-job page contexts stay isolated and
// the pool never exceeds max_concurrent).
type PooledLauncher struct {
	mu       sync.Mutex
	browsers []context.Context
	cancels  []context.CancelFunc
	next     int
	logger   arbor.ILogger
}

// NewPooledLauncher starts poolSize Chromium processes up front, headless
// or not per cfg.Headless. Instances that fail to start are skipped.
func NewPooledLauncher(poolSize int, cfg models.BrowserConfig, logger arbor.ILogger) (*PooledLauncher, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("pool size must be > 0, got %d", poolSize)
	}

	p := &PooledLauncher{logger: logger}
	for i := 0; i < poolSize; i++ {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		)
		allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

		testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
		err := chromedp.Run(testCtx, chromedp.Navigate("about:blank"))
		testCancel()
		if err != nil {
			browserCancel()
			allocatorCancel()
			logger.Warn().Err(err).Int("index", i).Msg("Failed to start pooled browser instance")
			continue
		}

		p.browsers = append(p.browsers, browserCtx)
		p.cancels = append(p.cancels, func() { browserCancel(); allocatorCancel() })
	}

	if len(p.browsers) == 0 {
		return nil, fmt.Errorf("failed to start any pooled browser instance")
	}

	logger.Info().Int("pool_size", len(p.browsers)).Msg("Browser pool initialized")
	return p, nil
}

// Launch hands back a fresh incognito browser context from the next
// instance in round-robin order.
func (p *PooledLauncher) Launch(ctx context.Context, cfg models.BrowserConfig) (*Session, error) {
	if cfg.BrowserType == models.BrowserFirefox {
		return nil, fmt.Errorf("firefox backend is named in BrowserType but not implemented")
	}

	p.mu.Lock()
	idx := p.next % len(p.browsers)
	p.next++
	parent := p.browsers[idx]
	p.mu.Unlock()

	jobCtx, jobCancel := chromedp.NewContext(parent, chromedp.WithNewBrowserContext())

	return &Session{
		Ctx:   jobCtx,
		Close: jobCancel,
	}, nil
}

// Shutdown tears down every browser instance in the pool.
func (p *PooledLauncher) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.cancels {
		cancel()
	}
	p.browsers = nil
	p.cancels = nil
}
