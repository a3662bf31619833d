// Package scheduler implements the Scheduler (spec §4.6, C6): a bounded
// inbound queue feeding a cooperative dispatch loop that routes jobs to the
// static or browser backend, bounds parallelism with a counting semaphore,
// and consults the healing policy on failure.
//
// Grounded in the teacher's internal/services/workers.Pool (goroutine fleet
// + buffered channel + sync.WaitGroup), generalized from a fixed worker
// fleet into the spec's single-dispatch-task-plus-per-job-goroutine shape so
// that the inbound queue's capacity and the concurrency bound are
// independently configurable, as spec §4.6 requires.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/healing"
	"github.com/weaver-engine/weaver/internal/models"
	"github.com/weaver-engine/weaver/internal/storage"
)

// ErrQueueFull is returned by Submit when the inbound queue is at capacity.
var ErrQueueFull = fmt.Errorf("inbound queue is full")

// ErrJobInFlight is returned by Submit when a job with the same id is
// already queued or executing. The spec treats same-id resubmission as a
// retry of the same logical job, which only the scheduler's own retry path
// may do; a second concurrent Submit of that id is rejected rather than
// silently racing the in-flight attempt.
var ErrJobInFlight = fmt.Errorf("a job with this id is already in flight")

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = fmt.Errorf("scheduler is closed")

// Executor is the shape both the static worker and the browser worker
// satisfy.
type Executor interface {
	Execute(ctx context.Context, job *models.Job) (*models.JobResult, *models.JobError)
}

// Stats is a point-in-time snapshot of scheduler activity, a supplement to
// the spec's external interface for operators who want visibility without
// instrumenting every job.
type Stats struct {
	Queued    int
	InFlight  int
	Completed uint64
	Failed    uint64
	Skipped   uint64
}

// Scheduler is the C6 dispatch loop.
type Scheduler struct {
	staticWorker  Executor
	browserWorker Executor
	sink          storage.Sink
	healer        healing.Healer
	maxConcurrent int
	logger        arbor.ILogger

	inbound     chan *models.Job
	sem         chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
	sendMu      sync.Mutex // serializes sends on inbound against closing it
	inboundShut bool

	retryMu     sync.Mutex
	retryCounts map[string]int
	inFlight    map[string]bool

	statsMu   sync.Mutex
	completed uint64
	failed    uint64
	skipped   uint64
}

// Config bundles the Scheduler's construction parameters (spec §4.6:
// "constructed with a static-HTML worker, a browser worker, a storage sink,
// an inbound-queue capacity, a max-concurrent bound, and a healing policy").
type Config struct {
	StaticWorker  Executor
	BrowserWorker Executor
	Sink          storage.Sink
	QueueCapacity int
	MaxConcurrent int
	Healer        healing.Healer
	Logger        arbor.ILogger
}

// New constructs a Scheduler. A nil Healer defaults to healing.NewDefaultPolicy().
func New(cfg Config) *Scheduler {
	healer := cfg.Healer
	if healer == nil {
		healer = healing.NewDefaultPolicy()
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	return &Scheduler{
		staticWorker:  cfg.StaticWorker,
		browserWorker: cfg.BrowserWorker,
		sink:          cfg.Sink,
		healer:        healer,
		maxConcurrent: cfg.MaxConcurrent,
		logger:        cfg.Logger,
		inbound:       make(chan *models.Job, cfg.QueueCapacity),
		sem:           make(chan struct{}, cfg.MaxConcurrent),
		retryCounts:   make(map[string]int),
		inFlight:      make(map[string]bool),
	}
}

// Submit is the non-blocking submission entry point. It rejects when the
// inbound queue is full, the job is already in flight, or the scheduler has
// been closed.
func (s *Scheduler) Submit(job *models.Job) error {
	if jerr := job.Validate(); jerr != nil {
		return jerr
	}

	if !s.markInFlight(job.ID) {
		return ErrJobInFlight
	}

	switch s.trySend(job) {
	case sendOK:
		return nil
	case sendClosed:
		s.clearInFlight(job.ID)
		return ErrClosed
	default:
		s.clearInFlight(job.ID)
		return ErrQueueFull
	}
}

// retrySubmit is the best-effort re-enqueue path used internally after a
// healing Retry/RetryAfter verdict. Unlike Submit, it does not re-check
// in-flight status (the job is already marked in-flight from its original
// Submit) and silently drops the retry on a full queue or a closed
// scheduler, matching spec §4.6's "Retry-on-full-queue" rule.
func (s *Scheduler) retrySubmit(job *models.Job) {
	if s.trySend(job) != sendOK {
		s.logger.Warn().Str("job_id", job.ID).Msg("Retry dropped: queue full or scheduler closed")
		s.clearInFlight(job.ID)
	}
}

type sendResult int

const (
	sendOK sendResult = iota
	sendFull
	sendClosed
)

// trySend attempts a non-blocking send on inbound. sendMu serializes every
// send attempt against Close's closing of the same channel, since a send on
// a closed channel panics — without this lock a send racing Close could fire
// between Close's closed-check and its close(s.inbound) call.
func (s *Scheduler) trySend(job *models.Job) sendResult {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.inboundShut {
		return sendClosed
	}

	select {
	case s.inbound <- job:
		return sendOK
	default:
		return sendFull
	}
}

func (s *Scheduler) markInFlight(jobID string) bool {
	s.retryMu.Lock()
	defer s.retryMu.Unlock()
	if s.inFlight[jobID] {
		return false
	}
	s.inFlight[jobID] = true
	return true
}

func (s *Scheduler) clearInFlight(jobID string) {
	s.retryMu.Lock()
	defer s.retryMu.Unlock()
	delete(s.inFlight, jobID)
}

// Close stops accepting new submissions and closes the inbound queue at
// once; jobs already buffered in it are still dispatched by Run. Abort semantics (spec §4.6's open question): this implementation
// resolves "abort" as closing the inbound queue and letting Run drain
// in-flight work to completion rather than force-cancelling goroutines
// mid-action, since mid-action cancellation would leave the browser/page in
// an unclassifiable state.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.sendMu.Lock()
		s.inboundShut = true
		close(s.inbound)
		s.sendMu.Unlock()
	})
}

// Run is the dispatch loop (spec §4.6's pseudocode). It blocks until the
// inbound queue is closed and drained, and every spawned job task has
// returned. If ctx is cancelled while it waits for a concurrency permit, it
// returns at once without waiting for running job tasks.
func (s *Scheduler) Run(ctx context.Context) {
	for job := range s.inbound {
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			s.logger.Warn().Msg("Dispatch loop cancelled while waiting for a concurrency permit")
			return
		}

		s.wg.Add(1)
		go s.runJob(ctx, job)
	}

	s.wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job *models.Job) {
	defer s.wg.Done()
	defer func() { <-s.sem }()

	worker := s.staticWorker
	if job.UseBrowser {
		worker = s.browserWorker
	}

	result, jerr := worker.Execute(ctx, job)
	if jerr == nil {
		s.onSuccess(job, result)
		return
	}

	s.onFailure(ctx, job, jerr)
}

func (s *Scheduler) onSuccess(job *models.Job, result *models.JobResult) {
	s.retryMu.Lock()
	delete(s.retryCounts, job.ID)
	delete(s.inFlight, job.ID)
	s.retryMu.Unlock()

	s.statsMu.Lock()
	s.completed++
	s.statsMu.Unlock()

	if err := s.sink.Save(result); err != nil {
		// Storage failures are non-fatal to job success (spec §4.2) and
		// never trigger healing.
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to persist job result")
	}

	s.logger.Info().Str("job_id", job.ID).Msg("Job completed")
}

func (s *Scheduler) onFailure(ctx context.Context, job *models.Job, jerr *models.JobError) {
	s.retryMu.Lock()
	s.retryCounts[job.ID]++
	attempt := s.retryCounts[job.ID]
	s.retryMu.Unlock()

	s.logger.Warn().
		Str("job_id", job.ID).
		Str("category", string(jerr.Category)).
		Str("message", jerr.Message).
		Int("attempt", attempt).
		Msg("Job failed")

	decision := s.healer.Heal(healing.Context{
		JobID:       job.ID,
		Err:         jerr,
		Attempt:     attempt,
		MaxAttempts: 0,
	})

	switch decision.Verdict {
	case healing.Retry:
		s.retrySubmit(job)

	case healing.RetryAfter:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			select {
			case <-time.After(time.Duration(decision.DelayMs) * time.Millisecond):
			case <-ctx.Done():
				s.clearInFlight(job.ID)
				return
			}
			s.retrySubmit(job)
		}()

	case healing.Skip:
		s.retryMu.Lock()
		delete(s.retryCounts, job.ID)
		delete(s.inFlight, job.ID)
		s.retryMu.Unlock()
		s.statsMu.Lock()
		s.skipped++
		s.statsMu.Unlock()
		s.logger.Warn().Str("job_id", job.ID).Int("attempt", attempt).Msg("Job skipped after healing policy verdict")

	case healing.Abort:
		s.retryMu.Lock()
		delete(s.retryCounts, job.ID)
		delete(s.inFlight, job.ID)
		s.retryMu.Unlock()
		s.statsMu.Lock()
		s.failed++
		s.statsMu.Unlock()
		s.logger.Error().Str("job_id", job.ID).Msg("Job aborted after healing policy verdict, closing inbound queue")
		// Abort (spec §4.6/§9 open question): stop accepting new submissions
		// and let Run drain whatever is already in flight, rather than
		// force-cancelling goroutines mid-action (see Close's doc comment).
		s.Close()
	}
}

// Stats returns a point-in-time snapshot of scheduler activity.
func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	completed, failed, skipped := s.completed, s.failed, s.skipped
	s.statsMu.Unlock()

	return Stats{
		Queued:    len(s.inbound),
		InFlight:  len(s.sem),
		Completed: completed,
		Failed:    failed,
		Skipped:   skipped,
	}
}
