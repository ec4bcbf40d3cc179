package identifier

import (
	"context"
	"sync"
)

type seqKey struct {
	tag  string
	year int
}

// MemorySequence is an in-process Allocator, used by tests and tooling
// that run without a database.
type MemorySequence struct {
	mu   sync.Mutex
	last map[seqKey]int64
}

func NewMemorySequence() *MemorySequence {
	return &MemorySequence{last: make(map[seqKey]int64)}
}

// Seed sets the last allocated value for (tag, year).
func (m *MemorySequence) Seed(tag string, year int, last int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[seqKey{tag, year}] = last
}

func (m *MemorySequence) Next(_ context.Context, tag string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := seqKey{tag, year}
	m.last[k]++
	return m.last[k], nil
}
