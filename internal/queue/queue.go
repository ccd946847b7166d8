// Package queue implements an in-memory FIFO job queue with capped
// exponential backoff retry and a single worker.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	baseBackoff = time.Second
	maxBackoff  = 30 * time.Second

	// maxScanWait bounds how long the worker sleeps before re-scanning when
	// only delayed jobs remain.
	maxScanWait = 5 * time.Second
)

// Job is a deferred unit of work with a bounded retry budget.
type Job struct {
	SessionID   string
	Attempts    int
	MaxAttempts int
	NextRetryAt time.Time
}

// Handler processes one job. A non-nil error schedules a retry until the
// job's attempt budget is exhausted.
type Handler func(ctx context.Context, job *Job) error

// Queue is a FIFO queue drained by at most one worker at a time. Handler
// invocations are strictly sequential across all jobs.
type Queue struct {
	mu         sync.Mutex
	jobs       []*Job
	handler    Handler
	processing bool

	// onDrop, when set, observes jobs dropped after exhausting their
	// attempts. Exhausted jobs are otherwise only logged.
	onDrop func(job *Job, err error)

	now   func() time.Time
	sleep func(d time.Duration)

	log zerolog.Logger
}

// New creates an empty queue. Nothing is processed until a handler is
// registered with SetHandler.
func New(log zerolog.Logger) *Queue {
	return &Queue{
		now:   time.Now,
		sleep: time.Sleep,
		log:   log.With().Str("component", "queue").Logger(),
	}
}

// SetHandler registers the job handler. If jobs are already waiting and no
// worker is active, processing starts immediately.
func (q *Queue) SetHandler(h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = h
	q.maybeStartLocked()
}

// SetOnDrop registers an observer for jobs dropped after attempt exhaustion.
func (q *Queue) SetOnDrop(fn func(job *Job, err error)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onDrop = fn
}

// Enqueue appends a job and starts a processing pass if the worker is idle.
func (q *Queue) Enqueue(job *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	q.maybeStartLocked()
}

// Len returns the number of queued jobs, including delayed ones.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Idle reports whether the queue is empty and no worker is running.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs) == 0 && !q.processing
}

func (q *Queue) maybeStartLocked() {
	if q.processing || q.handler == nil || len(q.jobs) == 0 {
		return
	}
	q.processing = true
	go q.run()
}

// run drains the queue until it is empty. Only one run loop exists at a
// time; the processing flag is the mutual exclusion.
func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.processing = false
			q.mu.Unlock()
			return
		}

		now := q.now()
		idx := -1
		var earliest time.Time
		for i, job := range q.jobs {
			if job.NextRetryAt.IsZero() || !job.NextRetryAt.After(now) {
				idx = i
				break
			}
			if earliest.IsZero() || job.NextRetryAt.Before(earliest) {
				earliest = job.NextRetryAt
			}
		}

		if idx == -1 {
			// Only delayed jobs remain; sleep until the earliest retry,
			// capped, then re-scan.
			q.mu.Unlock()
			wait := earliest.Sub(now)
			if wait > maxScanWait {
				wait = maxScanWait
			}
			if wait > 0 {
				q.sleep(wait)
			}
			continue
		}

		job := q.jobs[idx]
		q.jobs = append(q.jobs[:idx], q.jobs[idx+1:]...)
		handler := q.handler
		q.mu.Unlock()

		if err := handler(context.Background(), job); err != nil {
			q.retryOrDrop(job, err)
		}
	}
}

func (q *Queue) retryOrDrop(job *Job, err error) {
	job.Attempts++
	if job.Attempts >= job.MaxAttempts {
		q.log.Warn().
			Str("session_id", job.SessionID).
			Int("attempts", job.Attempts).
			Err(err).
			Msg("job dropped after exhausting attempts")
		q.mu.Lock()
		onDrop := q.onDrop
		q.mu.Unlock()
		if onDrop != nil {
			onDrop(job, err)
		}
		return
	}

	shift := job.Attempts - 1
	if shift > 5 {
		shift = 5
	}
	backoff := baseBackoff << shift
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	job.NextRetryAt = q.now().Add(backoff)

	q.log.Warn().
		Str("session_id", job.SessionID).
		Int("attempts", job.Attempts).
		Dur("backoff", backoff).
		Err(err).
		Msg("job failed, retry scheduled")

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}
