package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMonitor counts failures in Redis so alerting survives restarts and
// aggregates across replicas. Counter keys are bucketed per window and
// expire on their own. Redis being down degrades to a warning; monitoring
// must never take the pipeline down with it.
type RedisMonitor struct {
	client    *redis.Client
	threshold int64
	window    time.Duration
}

func NewRedisMonitor(client *redis.Client, opts ...RedisMonitorOption) *RedisMonitor {
	m := &RedisMonitor{
		client:    client,
		threshold: defaultThreshold,
		window:    defaultWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type RedisMonitorOption func(*RedisMonitor)

func WithRedisThreshold(n int64) RedisMonitorOption {
	return func(m *RedisMonitor) {
		m.threshold = n
	}
}

func WithRedisWindow(window time.Duration) RedisMonitorOption {
	return func(m *RedisMonitor) {
		m.window = window
	}
}

func (m *RedisMonitor) Record(ctx context.Context, op string) {
	bucket := time.Now().Truncate(m.window).Unix()
	key := fmt.Sprintf("alerts:%s:%d", op, bucket)

	count, err := m.client.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("failure monitor unavailable", "operation", op, "error", err)
		return
	}

	if count == 1 {
		if err := m.client.Expire(ctx, key, m.window).Err(); err != nil {
			slog.Warn("failed to set alert counter expiry", "key", key, "error", err)
		}
	}

	if count == m.threshold {
		slog.Error("ALERT: failure threshold exceeded",
			"operation", op,
			"failures", count,
			"window", m.window,
		)
	}
}
