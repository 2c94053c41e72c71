package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// HealthCheckerFunc adapts a probe function, typically a database ping.
type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) Healthy(ctx context.Context) bool {
	return f(ctx) == nil
}
