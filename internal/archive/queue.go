package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// Job is one statement waiting to be archived.
type Job struct {
	JobID      string
	SessionID  string
	Attachment domain.Attachment
	CreatedAt  time.Time
	RetryCount int
	MaxRetries int
}

// Queue archives statements in the background through a bounded channel.
// It is safe for concurrent use; suitable for single-instance deployments.
type Queue struct {
	jobChan   chan *Job
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     ObjectStore
	log       zerolog.Logger
	closed    bool
}

// NewQueue creates a queue writing into store. bufferSize determines how
// many jobs can wait before Enqueue blocks.
func NewQueue(bufferSize int, store ObjectStore, log zerolog.Logger) *Queue {
	return &Queue{
		jobChan:   make(chan *Job, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		log:       logger.WithComponent(log, "archive"),
	}
}

// Enqueue schedules a statement for archiving.
func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start launches the worker goroutines.
func (q *Queue) Start(ctx context.Context, workerCount int) {
	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job *Job) {
	objectName := objectNameFor(job)
	err := q.store.Put(ctx, objectName, job.Attachment.Data, job.Attachment.MIMEType)
	if err == nil {
		q.log.Info().
			Str("job_id", job.JobID).
			Str("object", objectName).
			Msg("statement archived")
		return
	}

	if job.RetryCount < job.MaxRetries {
		job.RetryCount++
		backoff := time.Duration(job.RetryCount) * time.Second
		q.log.Warn().
			Err(err).
			Str("job_id", job.JobID).
			Int("retry", job.RetryCount).
			Msg("archive failed, retrying")
		time.AfterFunc(backoff, func() {
			_ = q.Enqueue(context.Background(), job)
		})
		return
	}

	q.log.Error().
		Err(err).
		Str("job_id", job.JobID).
		Str("object", objectName).
		Msg("archive failed permanently")
}

// objectNameFor namespaces objects by date and session so the bucket stays
// browsable: statements/2025/03/01/<session>/<job>-<filename>.
func objectNameFor(job *Job) string {
	day := job.CreatedAt.UTC().Format("2006/01/02")
	name := job.Attachment.Name
	if name == "" {
		name = "statement"
	}
	return fmt.Sprintf("statements/%s/%s/%s-%s", day, job.SessionID, job.JobID, name)
}

// Stop drains the queue, waiting for in-flight jobs until ctx expires.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
