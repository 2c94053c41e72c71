package alerting

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultThreshold = 5
	defaultWindow    = time.Hour
)

// Monitor counts operation failures and escalates once a threshold is
// crossed inside a rolling window. Escalation is distinct from ordinary
// logging: crossing the threshold emits a single Error-level alert per
// window.
type Monitor interface {
	Record(ctx context.Context, op string)
}

// Noop is used where no monitoring sink is configured.
type Noop struct{}

func (Noop) Record(ctx context.Context, op string) {}

type MemoryMonitor struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	failures  map[string][]time.Time
	lastAlert map[string]time.Time

	now func() time.Time
}

type MemoryMonitorOption func(*MemoryMonitor)

func WithThreshold(n int) MemoryMonitorOption {
	return func(m *MemoryMonitor) {
		m.threshold = n
	}
}

func WithWindow(window time.Duration) MemoryMonitorOption {
	return func(m *MemoryMonitor) {
		m.window = window
	}
}

func NewMemoryMonitor(opts ...MemoryMonitorOption) *MemoryMonitor {
	m := &MemoryMonitor{
		threshold: defaultThreshold,
		window:    defaultWindow,
		failures:  make(map[string][]time.Time),
		lastAlert: make(map[string]time.Time),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryMonitor) Record(ctx context.Context, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)

	recent := m.failures[op][:0]
	for _, t := range m.failures[op] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failures[op] = recent

	if len(recent) >= m.threshold && m.lastAlert[op].Before(cutoff) {
		m.lastAlert[op] = now
		slog.Error("ALERT: failure threshold exceeded",
			"operation", op,
			"failures", len(recent),
			"window", m.window,
		)
	}
}

// Count reports the failures recorded for op inside the current window.
func (m *MemoryMonitor) Count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	n := 0
	for _, t := range m.failures[op] {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

// Alerted reports whether op crossed the threshold in the current window.
func (m *MemoryMonitor) Alerted(op string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAlert[op].After(m.now().Add(-m.window))
}
