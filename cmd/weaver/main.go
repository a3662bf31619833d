package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/browser"
	"github.com/weaver-engine/weaver/internal/common"
	"github.com/weaver-engine/weaver/internal/healing"
	"github.com/weaver-engine/weaver/internal/models"
	"github.com/weaver-engine/weaver/internal/scheduler"
	"github.com/weaver-engine/weaver/internal/staticworker"
	"github.com/weaver-engine/weaver/internal/storage"
)

var (
	configFile = flag.String("config", "", "Configuration file path (TOML)")
	jobFile    = flag.String("job", "", "Job definition file path (JSON)")
)

func main() {
	flag.Parse()

	if *jobFile == "" {
		fmt.Fprintln(os.Stderr, "usage: weaver -job <job.json> [-config <config.toml>]")
		os.Exit(1)
	}

	config, err := common.LoadFromFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.SetupLogger(config)
	logger.Info().Msg("Weaver starting")

	job, err := loadJob(*jobFile)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load job")
		os.Exit(1)
	}

	sink, err := buildSink(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize storage sink")
		os.Exit(1)
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sched := scheduler.New(scheduler.Config{
		StaticWorker:  staticworker.New(nil, logger),
		BrowserWorker: buildBrowserWorker(config, logger),
		Sink:          sink,
		QueueCapacity: config.Scheduler.QueueCapacity,
		MaxConcurrent: config.Scheduler.MaxConcurrent,
		Healer:        &healing.DefaultPolicy{MaxRetries: config.Scheduler.MaxRetries},
		Logger:        logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := sched.Submit(job); err != nil {
		logger.Error().Err(err).Msg("Failed to submit job")
		os.Exit(1)
	}

	// Single-job CLI run: close the inbound queue shortly after submitting so
	// Run returns once this job drains. A retry that comes due after the
	// queue is closed is dropped, so later attempts of the job do not run.
	go func() {
		time.Sleep(100 * time.Millisecond)
		sched.Close()
	}()

	sched.Run(ctx)

	stats := sched.Stats()
	logger.Info().
		Uint64("completed", stats.Completed).
		Uint64("skipped", stats.Skipped).
		Uint64("failed", stats.Failed).
		Msg("Weaver finished")
}

func loadJob(path string) (*models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file %s: %w", path, err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}

	return &job, nil
}

func buildSink(config *common.Config, logger arbor.ILogger) (storage.Sink, error) {
	switch config.Storage.Backend {
	case "badger":
		return storage.NewBadgerSink(config.Storage.Badger.Path, logger)
	default:
		return storage.NewFileSink(config.Storage.File.Folder, logger)
	}
}

func buildBrowserWorker(config *common.Config, logger arbor.ILogger) *browser.Worker {
	var timeouts browser.Timeouts
	switch config.ResolveTimeoutPreset() {
	case "fast":
		timeouts = browser.FastTimeouts()
	case "patient":
		timeouts = browser.PatientTimeouts()
	default:
		timeouts = browser.DefaultTimeouts()
	}

	var launcher browser.Launcher
	if config.Browser.PoolSize > 0 {
		cfg := models.BrowserConfig{BrowserType: models.BrowserChromium, Headless: config.Browser.Headless}
		pooled, err := browser.NewPooledLauncher(config.Browser.PoolSize, cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to start browser pool, falling back to fresh-per-job launcher")
			launcher = browser.NewFreshLauncher(logger)
		} else {
			launcher = pooled
		}
	} else {
		launcher = browser.NewFreshLauncher(logger)
	}

	return browser.New(launcher, timeouts, logger)
}
