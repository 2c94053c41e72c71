package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryMonitor_ThresholdAlert(t *testing.T) {
	monitor := NewMemoryMonitor(WithThreshold(3), WithWindow(time.Hour))
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	monitor.now = func() time.Time { return now }

	monitor.Record(ctx, "flush:events")
	monitor.Record(ctx, "flush:events")
	assert.False(t, monitor.Alerted("flush:events"))

	monitor.Record(ctx, "flush:events")
	assert.True(t, monitor.Alerted("flush:events"))
	assert.Equal(t, 3, monitor.Count("flush:events"))
}

func TestMemoryMonitor_OperationsAreIndependent(t *testing.T) {
	monitor := NewMemoryMonitor(WithThreshold(2))
	ctx := context.Background()

	monitor.Record(ctx, "flush:events")
	monitor.Record(ctx, "flush:index")

	assert.False(t, monitor.Alerted("flush:events"))
	assert.False(t, monitor.Alerted("flush:index"))
	assert.Equal(t, 1, monitor.Count("flush:events"))
}

func TestMemoryMonitor_WindowExpiry(t *testing.T) {
	monitor := NewMemoryMonitor(WithThreshold(3), WithWindow(time.Hour))
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	monitor.now = func() time.Time { return now }

	monitor.Record(ctx, "flush:events")
	monitor.Record(ctx, "flush:events")

	// old failures age out of the rolling window
	now = now.Add(2 * time.Hour)
	monitor.Record(ctx, "flush:events")

	assert.Equal(t, 1, monitor.Count("flush:events"))
	assert.False(t, monitor.Alerted("flush:events"))
}
