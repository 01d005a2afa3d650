package bigqc

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Backoff bounds for retrying transient backend errors when a worker
// stores a result. Retries are invisible to callers beyond latency.
const (
	backoffStart = 50 * time.Millisecond
	backoffLimit = 5 * time.Second
)

// LocalQueue runs jobs on a pool of in-process worker goroutines,
// standing in for an external broker. Results travel through the
// Backend exactly as they would with a remote transport, so Forget
// and failure propagation behave identically.
//
// Close is safe to call while submitters are active: a Submit racing
// the shutdown either lands its job or reports ErrQueueClosed.
type LocalQueue struct {
	backend Backend
	jobs    chan localJob

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type localJob struct {
	job    Job
	handle *JobHandle
}

// NewLocalQueue starts a worker pool sized by settings and returns
// the queue. A nil settings uses the defaults.
func NewLocalQueue(settings *Settings, backend Backend) *LocalQueue {
	if settings == nil {
		settings = DefaultSettings()
	}
	n := settings.WorkerConcurrency
	if n < 1 {
		n = runtime.NumCPU()
	}
	buf := n * settings.PrefetchMultiplier
	if buf < 1 {
		buf = 1
	}
	q := &LocalQueue{
		backend: backend,
		jobs:    make(chan localJob, buf),
	}
	q.wg.Add(n)
	for i := 0; i < n; i++ {
		go q.worker()
	}
	return q
}

func (q *LocalQueue) worker() {
	defer q.wg.Done()
	for lj := range q.jobs {
		q.run(lj)
	}
}

func (q *LocalQueue) run(lj localJob) {
	defer lj.handle.Complete()
	out, fail := RunJob(context.Background(), lj.job)
	var err error
	for wait := backoffStart; ; wait *= 2 {
		err = q.backend.Put(context.Background(), lj.handle.ID(), out, fail)
		if err == nil || wait > backoffLimit {
			break
		}
		time.Sleep(wait)
	}
	if err != nil {
		log.Printf("bigqc: storing result %s: %v", lj.handle.ID(), err)
	}
}

// Submit enqueues one job and returns its handle. An unregistered
// program is rejected here, before anything is enqueued; that is a
// dispatch error, not a program failure.
func (q *LocalQueue) Submit(ctx context.Context, program string, input *ProgramInput) (*JobHandle, error) {
	if _, ok := LookupProgram(program); !ok {
		return nil, &UnknownProgramError{Program: program}
	}
	// the send happens under q.mu so Close cannot close the channel
	// between the closed check and the send; workers never take q.mu,
	// so a blocked send still drains
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}
	h := NewJobHandle(uuid.NewString(), q.backend)
	select {
	case q.jobs <- localJob{job: Job{Program: program, Input: input}, handle: h}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return h, nil
}

// SubmitBatch enqueues jobs as one parallel unit, preserving their
// order in the returned handle. If a later submission fails, earlier
// jobs keep running; their results stay retrievable through the
// returned error's handles only via the backend, so callers should
// treat a SubmitBatch error as fatal for the whole unit.
func (q *LocalQueue) SubmitBatch(ctx context.Context, jobs []Job) (*BatchHandle, error) {
	handles := make([]*JobHandle, 0, len(jobs))
	for i, job := range jobs {
		h, err := q.Submit(ctx, job.Program, job.Input)
		if err != nil {
			return nil, &JobError{Index: i, Err: err}
		}
		handles = append(handles, h)
	}
	return NewBatchHandle(handles), nil
}

// Close stops accepting jobs and blocks until in-flight work drains
func (q *LocalQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
