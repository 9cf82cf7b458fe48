package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeLifecycle(t *testing.T) {
	pm := NewProbeManager("1.2.3", fixed("backend", Healthy("ok")))
	ctx := context.Background()

	ready := pm.CheckReadiness(ctx)
	assert.Equal(t, StatusUnhealthy, ready.Status)
	assert.Equal(t, "starting", ready.Phase)
	assert.Empty(t, ready.Checks)
	assert.False(t, pm.IsInitialized())

	pm.MarkInitialized()
	ready = pm.CheckReadiness(ctx)
	assert.Equal(t, StatusHealthy, ready.Status)
	assert.Equal(t, "serving", ready.Phase)
	assert.Equal(t, "1.2.3", ready.Version)
	require.Len(t, ready.Checks, 1)
	assert.Equal(t, "backend", ready.Checks[0].Name)

	pm.MarkShutdown()
	assert.True(t, pm.IsShuttingDown())
	assert.Equal(t, StatusUnhealthy, pm.CheckReadiness(ctx).Status)
	assert.Equal(t, StatusDegraded, pm.CheckLiveness(ctx).Status)

	pm.MarkInitialized()
	assert.True(t, pm.IsShuttingDown(), "draining is final")
}

func TestLivenessSkipsChecks(t *testing.T) {
	called := false
	pm := NewProbeManager("dev", Func("backend", func(context.Context) *Result {
		called = true
		return Unhealthy("down")
	}))

	live := pm.CheckLiveness(context.Background())
	assert.Equal(t, StatusHealthy, live.Status)
	assert.False(t, called)
	assert.NotEmpty(t, live.Uptime)
}

func TestReadinessReportsFailingBackend(t *testing.T) {
	pm := NewProbeManager("dev", fixed("backend", Unhealthy("backend unreachable")), fixed("contract", Healthy("loaded")))
	pm.MarkInitialized()

	ready := pm.CheckReadiness(context.Background())
	assert.Equal(t, StatusUnhealthy, ready.Status)
	assert.Len(t, ready.Checks, 2)
}
