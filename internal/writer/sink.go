package writer

import (
	"context"
	"sync"
)

// Sink is the destination of flushed batches. Implementations may be slow
// or unreliable; the writer owns retries.
type Sink interface {
	InsertBatch(ctx context.Context, table string, records []any) error
}

// MemSink collects batches in memory. Test double and local-run sink.
type MemSink struct {
	mu      sync.Mutex
	tables  map[string][]any
	batches map[string]int

	// FailFor makes InsertBatch fail for a table the given number of times.
	failFor map[string]int
}

func NewMemSink() *MemSink {
	return &MemSink{
		tables:  make(map[string][]any),
		batches: make(map[string]int),
		failFor: make(map[string]int),
	}
}

func (s *MemSink) InsertBatch(ctx context.Context, table string, records []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFor[table] > 0 {
		s.failFor[table]--
		return errInsertFailed
	}

	s.tables[table] = append(s.tables[table], records...)
	s.batches[table]++
	return nil
}

// FailNext makes the next n inserts into table fail.
func (s *MemSink) FailNext(table string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFor[table] = n
}

func (s *MemSink) Records(table string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.tables[table]...)
}

func (s *MemSink) Batches(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[table]
}
