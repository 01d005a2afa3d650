package bigqc

import (
	"context"
	"fmt"
)

// A Job pairs a program name with the input it should run
type Job struct {
	Program string        `json:"program"`
	Input   *ProgramInput `json:"input"`
}

// Queue is the job submission contract. Implementations hand jobs to
// an opaque pool of workers; the caller only sees handles. Submission
// order is the identity of a batch: results always come back in the
// order the jobs went in, regardless of completion order.
type Queue interface {
	Submit(ctx context.Context, program string, input *ProgramInput) (*JobHandle, error)
	SubmitBatch(ctx context.Context, jobs []Job) (*BatchHandle, error)
}

// Backend stores finished job results keyed by job id. Get returns
// exactly one of an output or a failure record; when neither is
// stored, for example after Delete, it returns an error wrapping
// ErrNoResult.
type Backend interface {
	Put(ctx context.Context, id string, out *SinglePointOutput, fail *ProgramFailure) error
	Get(ctx context.Context, id string) (*SinglePointOutput, *ProgramFailure, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// A JobHandle tracks one submitted job. Wait blocks until the job
// finishes or ctx expires, then loads the stored result: a
// *FailureError if the program failed, the output otherwise. Forget
// releases the stored result without touching sibling jobs.
type JobHandle struct {
	id      string
	backend Backend
	done    chan struct{}
}

// NewJobHandle builds the handle a Queue implementation returns from
// Submit. The queue must call Complete exactly once when the job's
// result has been stored.
func NewJobHandle(id string, backend Backend) *JobHandle {
	return &JobHandle{id: id, backend: backend, done: make(chan struct{})}
}

// ID returns the job identifier
func (h *JobHandle) ID() string { return h.id }

// Complete marks the job finished, releasing every Wait
func (h *JobHandle) Complete() { close(h.done) }

// Ready reports whether the job has finished, without blocking
func (h *JobHandle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the job finishes and returns its result. A failed
// program surfaces as a *FailureError carrying the full diagnostic
// record, exactly as if the calculation had run locally.
func (h *JobHandle) Wait(ctx context.Context) (*SinglePointOutput, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out, fail, err := h.backend.Get(ctx, h.id)
	if err != nil {
		return nil, err
	}
	if fail != nil {
		return nil, fail.Err()
	}
	return out, nil
}

// Forget releases the stored result for this job. Waiting afterwards
// reports ErrNoResult.
func (h *JobHandle) Forget() error {
	return h.backend.Delete(context.Background(), h.id)
}

// A BatchHandle tracks one parallel unit of jobs in submission order
type BatchHandle struct {
	handles []*JobHandle
}

// NewBatchHandle wraps the per-job handles of one submitted batch
func NewBatchHandle(handles []*JobHandle) *BatchHandle {
	return &BatchHandle{handles: handles}
}

// Handles returns the per-job handles in submission order
func (b *BatchHandle) Handles() []*JobHandle { return b.handles }

// A JobError attributes a failure inside a batch to the position of
// the job in submission order
type JobError struct {
	Index int
	ID    string
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("bigqc: batch job %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// Wait blocks until every job in the batch finishes and returns their
// outputs in submission order. The first failing job, in submission
// order, is returned as a *JobError wrapping its underlying error.
func (b *BatchHandle) Wait(ctx context.Context) ([]*SinglePointOutput, error) {
	outs := make([]*SinglePointOutput, len(b.handles))
	for i, h := range b.handles {
		out, err := h.Wait(ctx)
		if err != nil {
			return nil, &JobError{Index: i, ID: h.ID(), Err: err}
		}
		outs[i] = out
	}
	return outs, nil
}

// Forget releases the stored results of every job in the batch
func (b *BatchHandle) Forget() error {
	var first error
	for _, h := range b.handles {
		if err := h.Forget(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
