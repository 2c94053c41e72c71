package writer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dkovac/dno-radar/internal/alerting"
)

func noBackoff(int) time.Duration { return 0 }

func TestWriter_FlushOnThreshold(t *testing.T) {
	sink := NewMemSink()
	w := New(sink, WithBatchSize(3), WithBackoff(noBackoff))
	ctx := context.Background()

	w.Queue(ctx, "events", "a")
	w.Queue(ctx, "events", "b")

	// batch_size - 1 records: nothing flushed yet
	assert.Equal(t, 0, sink.Batches("events"))
	assert.Equal(t, 2, w.Len("events"))

	w.Queue(ctx, "events", "c")

	// reaching batch_size flushes without an explicit Flush call
	assert.Equal(t, 1, sink.Batches("events"))
	assert.Equal(t, 0, w.Len("events"))
	assert.Equal(t, []any{"a", "b", "c"}, sink.Records("events"))
}

func TestWriter_BuffersArePerTable(t *testing.T) {
	sink := NewMemSink()
	w := New(sink, WithBatchSize(2), WithBackoff(noBackoff))
	ctx := context.Background()

	w.Queue(ctx, "events", "e1")
	w.Queue(ctx, "index", "i1")

	// neither table reached its own threshold
	assert.Equal(t, 0, sink.Batches("events"))
	assert.Equal(t, 0, sink.Batches("index"))

	w.Queue(ctx, "events", "e2")
	assert.Equal(t, 1, sink.Batches("events"))
	assert.Equal(t, 0, sink.Batches("index"))
}

func TestWriter_ExplicitFlush(t *testing.T) {
	sink := NewMemSink()
	w := New(sink, WithBatchSize(50), WithBackoff(noBackoff))
	ctx := context.Background()

	w.Queue(ctx, "events", "a")
	w.Queue(ctx, "index", "b")

	w.Flush(ctx)

	assert.Equal(t, []any{"a"}, sink.Records("events"))
	assert.Equal(t, []any{"b"}, sink.Records("index"))
	assert.Equal(t, 0, w.Len("events"))
}

func TestWriter_CloseFlushesExactlyOnce(t *testing.T) {
	sink := NewMemSink()
	w := New(sink, WithBatchSize(50), WithBackoff(noBackoff))
	ctx := context.Background()

	w.Queue(ctx, "events", "a")

	w.Close(ctx)
	assert.Equal(t, 1, sink.Batches("events"))

	// second Close is a no-op, no double insertion
	w.Close(ctx)
	assert.Equal(t, 1, sink.Batches("events"))

	// records queued after Close are dropped
	w.Queue(ctx, "events", "late")
	w.Flush(ctx)
	assert.Equal(t, []any{"a"}, sink.Records("events"))
}

func TestWriter_RetriesThenSucceeds(t *testing.T) {
	sink := NewMemSink()
	w := New(sink, WithBatchSize(2), WithMaxRetries(3), WithBackoff(noBackoff))
	ctx := context.Background()

	sink.FailNext("events", 2)

	w.Queue(ctx, "events", "a")
	w.Queue(ctx, "events", "b")

	// third attempt lands the batch
	assert.Equal(t, []any{"a", "b"}, sink.Records("events"))
}

func TestWriter_DropsBatchAfterRetryExhaustion(t *testing.T) {
	sink := NewMemSink()
	monitor := alerting.NewMemoryMonitor(alerting.WithThreshold(1))
	w := New(sink, WithBatchSize(2), WithMaxRetries(3), WithBackoff(noBackoff), WithMonitor(monitor))
	ctx := context.Background()

	sink.FailNext("events", 3)

	w.Queue(ctx, "events", "a")
	w.Queue(ctx, "events", "b")

	// data loss is surfaced via the monitor, not silently swallowed
	assert.Empty(t, sink.Records("events"))
	assert.Equal(t, 1, monitor.Count("flush:events"))
	assert.True(t, monitor.Alerted("flush:events"))

	// the writer keeps accepting records afterwards
	w.Queue(ctx, "events", "c")
	w.Queue(ctx, "events", "d")
	assert.Equal(t, []any{"c", "d"}, sink.Records("events"))
}

func TestWriter_ConcurrentProducers(t *testing.T) {
	sink := NewMemSink()
	w := New(sink, WithBatchSize(10), WithBackoff(noBackoff))
	ctx := context.Background()

	const producers = 8
	const perProducer = 25

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				w.Queue(ctx, "events", fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()
	w.Close(ctx)

	// no record lost, no record duplicated
	assert.Len(t, sink.Records("events"), producers*perProducer)
}
