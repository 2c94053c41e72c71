package writer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dkovac/dno-radar/internal/alerting"
)

var errInsertFailed = errors.New("batch insert failed")

const (
	defaultBatchSize  = 50
	defaultMaxRetries = 3
)

// Writer buffers records per destination table and flushes a table's
// buffer when it reaches the batch size, on an explicit Flush, or once on
// Close. Write-behind, not a write-ahead log: a crash before flush loses
// the buffered rows; a batch dropped after retry exhaustion is reported to
// the failure monitor.
type Writer struct {
	sink    Sink
	monitor alerting.Monitor

	batchSize  int
	maxRetries int
	backoff    func(attempt int) time.Duration

	mu      sync.Mutex
	buffers map[string][]any
	closed  bool
}

type Option func(*Writer)

func WithBatchSize(n int) Option {
	return func(w *Writer) {
		w.batchSize = n
	}
}

func WithMaxRetries(n int) Option {
	return func(w *Writer) {
		w.maxRetries = n
	}
}

func WithMonitor(m alerting.Monitor) Option {
	return func(w *Writer) {
		w.monitor = m
	}
}

// WithBackoff overrides the retry delay. The default is 2^attempt seconds.
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(w *Writer) {
		w.backoff = f
	}
}

func New(sink Sink, opts ...Option) *Writer {
	w := &Writer{
		sink:       sink,
		monitor:    alerting.Noop{},
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		buffers: make(map[string][]any),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Queue appends a record to the table's buffer. Reaching the batch size
// drains that table synchronously on the calling goroutine. Queue after
// Close drops the record.
func (w *Writer) Queue(ctx context.Context, table string, record any) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		slog.Warn("queue on closed writer, dropping record", "table", table)
		return
	}

	w.buffers[table] = append(w.buffers[table], record)
	if len(w.buffers[table]) < w.batchSize {
		w.mu.Unlock()
		return
	}

	// swap the buffer out under the lock so no other caller can drain
	// the same records
	batch := w.buffers[table]
	delete(w.buffers, table)
	w.mu.Unlock()

	w.flushBatch(ctx, table, batch)
}

// Flush drains every table's buffer.
func (w *Writer) Flush(ctx context.Context) {
	w.mu.Lock()
	drained := w.buffers
	w.buffers = make(map[string][]any)
	w.mu.Unlock()

	for table, batch := range drained {
		w.flushBatch(ctx, table, batch)
	}
}

// Close flushes once and marks the writer terminal. Safe to call more than
// once; only the first call flushes.
func (w *Writer) Close(ctx context.Context) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	drained := w.buffers
	w.buffers = make(map[string][]any)
	w.mu.Unlock()

	for table, batch := range drained {
		w.flushBatch(ctx, table, batch)
	}
}

// flushBatch attempts a bulk insert with bounded retries and exponential
// backoff. On final failure the batch is dropped and the loss escalated to
// the failure monitor.
func (w *Writer) flushBatch(ctx context.Context, table string, batch []any) {
	if len(batch) == 0 {
		return
	}

	var err error
	for attempt := 0; attempt < w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(w.backoff(attempt - 1)):
			case <-ctx.Done():
				slog.Error("flush cancelled, dropping batch",
					"table", table, "count", len(batch), "error", ctx.Err())
				w.monitor.Record(ctx, "flush:"+table)
				return
			}
		}

		if err = w.sink.InsertBatch(ctx, table, batch); err == nil {
			slog.Debug("batch flushed", "table", table, "count", len(batch), "attempt", attempt+1)
			return
		}

		slog.Warn("batch insert failed",
			"table", table, "count", len(batch), "attempt", attempt+1, "error", err)
	}

	slog.Error("dropping batch after retry exhaustion",
		"table", table, "count", len(batch), "error", err)
	w.monitor.Record(ctx, "flush:"+table)
}

// Len reports the buffered record count for a table.
func (w *Writer) Len(table string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffers[table])
}
