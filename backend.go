package bigqc

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is a Backend that keeps results in a map. It is the
// zero-setup choice for tests and short-lived pipelines; use the
// sqlite store for anything that should survive the process.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	out  *SinglePointOutput
	fail *ProgramFailure
}

// NewMemoryBackend returns an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]memoryRecord)}
}

func (b *MemoryBackend) Put(ctx context.Context, id string, out *SinglePointOutput, fail *ProgramFailure) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[id] = memoryRecord{out: out, fail: fail}
	return nil
}

func (b *MemoryBackend) Get(ctx context.Context, id string) (*SinglePointOutput, *ProgramFailure, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.records[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoResult, id)
	}
	return rec.out, rec.fail, nil
}

func (b *MemoryBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, id)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }
