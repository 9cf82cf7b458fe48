package health

import (
	"context"
	"sync/atomic"
	"time"
)

type phase int32

const (
	phaseStarting phase = iota
	phaseServing
	phaseDraining
)

func (p phase) String() string {
	switch p {
	case phaseServing:
		return "serving"
	case phaseDraining:
		return "draining"
	default:
		return "starting"
	}
}

// ProbeManager tracks the lifecycle of a long-running server and answers
// its liveness and readiness probes.
type ProbeManager struct {
	*Manager

	version string
	started time.Time
	phase   atomic.Int32
}

// NewProbeManager creates a probe manager reporting version. Readiness
// runs checkers.
func NewProbeManager(version string, checkers ...Checker) *ProbeManager {
	return &ProbeManager{
		Manager: NewManager(checkers...),
		version: version,
		started: time.Now(),
	}
}

// MarkInitialized moves a starting server to serving.
func (pm *ProbeManager) MarkInitialized() {
	pm.phase.CompareAndSwap(int32(phaseStarting), int32(phaseServing))
}

// MarkShutdown makes readiness fail from now on.
func (pm *ProbeManager) MarkShutdown() {
	pm.phase.Store(int32(phaseDraining))
}

// IsInitialized reports whether the server has started serving.
func (pm *ProbeManager) IsInitialized() bool {
	return pm.current() != phaseStarting
}

// IsShuttingDown reports whether MarkShutdown was called.
func (pm *ProbeManager) IsShuttingDown() bool {
	return pm.current() == phaseDraining
}

func (pm *ProbeManager) current() phase {
	return phase(pm.phase.Load())
}

// ProbeResult is the body of a probe endpoint.
type ProbeResult struct {
	Status    Status        `json:"status"`
	Phase     string        `json:"phase"`
	Version   string        `json:"version,omitempty"`
	Uptime    string        `json:"uptime"`
	Checks    []NamedResult `json:"checks,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// CheckLiveness runs no checks. It is degraded while draining.
func (pm *ProbeManager) CheckLiveness(context.Context) *ProbeResult {
	status := StatusHealthy
	if pm.IsShuttingDown() {
		status = StatusDegraded
	}
	return pm.probe(status, nil)
}

// CheckReadiness is unhealthy unless serving, and otherwise reports the
// checkers.
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.current() != phaseServing {
		return pm.probe(StatusUnhealthy, nil)
	}
	r := pm.Report(ctx)
	return pm.probe(r.Status, r.Checks)
}

func (pm *ProbeManager) probe(status Status, checks []NamedResult) *ProbeResult {
	return &ProbeResult{
		Status:    status,
		Phase:     pm.current().String(),
		Version:   pm.version,
		Uptime:    time.Since(pm.started).Round(time.Second).String(),
		Checks:    checks,
		Timestamp: time.Now(),
	}
}
