// Package health checks what the autosdlc client depends on: the backend's
// /health endpoint and the embedded API description.
//
//	m := health.NewManager(
//		health.NewBackendChecker(api, origin),
//		health.NewContractChecker(),
//	)
//	report := m.Report(ctx)
//
// ProbeManager answers liveness and readiness for the preview server.
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency. Check must honour ctx.
type Checker interface {
	Name() string
	Check(ctx context.Context) *Result
}

// Func turns fn into a Checker called name.
func Func(name string, fn func(context.Context) *Result) Checker {
	return funcChecker{name: name, fn: fn}
}

type funcChecker struct {
	name string
	fn   func(context.Context) *Result
}

func (f funcChecker) Name() string { return f.name }

func (f funcChecker) Check(ctx context.Context) *Result { return f.fn(ctx) }

// Status is the outcome of a check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Worst folds statuses: unhealthy beats degraded beats healthy. No
// statuses is healthy.
func Worst(statuses ...Status) Status {
	worst := StatusHealthy
	for _, s := range statuses {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// Result is the outcome of one check.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns" yaml:"latency"`
}

// Healthy, Degraded and Unhealthy build results with that status.
func Healthy(message string) *Result { return &Result{Status: StatusHealthy, Message: message} }

func Degraded(message string) *Result { return &Result{Status: StatusDegraded, Message: message} }

func Unhealthy(message string) *Result { return &Result{Status: StatusUnhealthy, Message: message} }

// WithDetail sets key and returns r.
func (r *Result) WithDetail(key string, value any) *Result {
	if r.Details == nil {
		r.Details = make(map[string]any)
	}
	r.Details[key] = value
	return r
}
