package checkpoint

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/smart-trainer/workout-runner/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

const (
	defaultWriterQueueSize  = 256
	defaultWriterRetries    = 2
	defaultWriterRetryDelay = 200 * time.Millisecond
	defaultWriterTimeout    = 5 * time.Second
)

var errStorePanicked = errors.New("store panicked")

// WriterOptions tunes a Writer. Zero values use defaults; a negative
// Retries disables retrying.
type WriterOptions struct {
	QueueSize  int
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
}

type writeJob struct {
	sessionID string
	progress  *Progress
	summary   *Summary
}

// Writer is the engine-facing side of a Store. Progress and finalize writes
// are queued and applied in order by one goroutine; failures are retried a
// few times, then logged and dropped. The engine never waits on storage.
type Writer struct {
	store  Store
	logger *log.Logger
	opts   WriterOptions

	jobs chan writeJob

	mu           sync.Mutex
	closed       bool
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewWriter starts the write worker for store
func NewWriter(store Store, logger *log.Logger, opts WriterOptions) *Writer {
	if store == nil {
		panic("Writer: store cannot be nil")
	}
	if logger == nil {
		panic("Writer: logger cannot be nil")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultWriterQueueSize
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = defaultWriterRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultWriterRetryDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultWriterTimeout
	}

	w := &Writer{
		store:  store,
		logger: logger,
		opts:   opts,
		jobs:   make(chan writeJob, opts.QueueSize),
	}

	w.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { w.run() })

	return w
}

// CreateSession registers the session synchronously. If the store fails the
// session still gets a local id so the workout can run; it just won't be
// durable.
func (w *Writer) CreateSession(ctx context.Context, routineID string, tl *timeline.Timeline) string {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	var (
		id  string
		err error
	)
	ok := go_func_utils.SafeCall(w.logger, "Writer", func() {
		id, err = w.store.CreateSession(ctx, routineID, tl)
	})
	if !ok || err != nil || id == "" {
		id = uuid.NewString()
		w.logger.Printf("Writer: create session for routine %q failed (%v), continuing with local id %s", routineID, err, id)
		return id
	}
	w.logger.Printf("Writer: session %s created for routine %q", id, routineID)
	return id
}

// UpdateProgress queues a progress checkpoint
func (w *Writer) UpdateProgress(sessionID string, progress Progress) {
	progress.PauseIntervals = append([]PauseInterval(nil), progress.PauseIntervals...)
	progress.CompletedBlocks = append([]BlockRecord(nil), progress.CompletedBlocks...)
	progress.SkippedBlocks = append([]BlockRecord(nil), progress.SkippedBlocks...)
	w.enqueue(writeJob{sessionID: sessionID, progress: &progress})
}

// Finalize queues the final summary
func (w *Writer) Finalize(sessionID string, summary Summary) {
	summary.CompletedBlocks = append([]BlockRecord(nil), summary.CompletedBlocks...)
	summary.SkippedBlocks = append([]BlockRecord(nil), summary.SkippedBlocks...)
	w.enqueue(writeJob{sessionID: sessionID, summary: &summary})
}

// Close applies queued writes and stops the worker. Safe to call multiple times.
func (w *Writer) Close() {
	w.shutdownOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.jobs)
		w.mu.Unlock()
		w.wg.Wait()
		w.logger.Printf("Writer: Shutdown complete")
	})
}

func (w *Writer) enqueue(job writeJob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Printf("Writer: closed, dropping write for session %s", job.sessionID)
		return
	}
	select {
	case w.jobs <- job:
	default:
		w.logger.Printf("Writer: queue full, dropping write for session %s", job.sessionID)
	}
}

func (w *Writer) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		w.apply(job)
	}
}

func (w *Writer) apply(job writeJob) {
	what := "progress"
	if job.summary != nil {
		what = "finalize"
	}

	var err error
	for attempt := 0; attempt <= w.opts.Retries; attempt++ {
		if attempt > 0 {
			time.Sleep(w.opts.RetryDelay)
		}
		err = w.attempt(job)
		if err == nil {
			return
		}
		w.logger.Printf("Writer: %s write for session %s failed (attempt %d): %v", what, job.sessionID, attempt+1, err)
	}
	w.logger.Printf("Writer: giving up on %s write for session %s", what, job.sessionID)
}

func (w *Writer) attempt(job writeJob) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.Timeout)
	defer cancel()

	ok := go_func_utils.SafeCall(w.logger, "Writer", func() {
		if job.summary != nil {
			err = w.store.Finalize(ctx, job.sessionID, *job.summary)
		} else {
			err = w.store.UpdateProgress(ctx, job.sessionID, *job.progress)
		}
	})
	if !ok {
		return errStorePanicked
	}
	return err
}
