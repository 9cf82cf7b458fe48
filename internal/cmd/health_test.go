package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/internal/backendtest"
	"github.com/autosdlc/autosdlc/internal/exitcode"
	"github.com/autosdlc/autosdlc/internal/health"
)

func TestHealthy(t *testing.T) {
	b, origin := backend(t)

	r := run(t, "", "health", "--no-color", origin)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Backend "+b.URL+"  healthy")
	assert.Contains(t, r.out, "backend")
	assert.Contains(t, r.out, "contract")
}

func TestHealthJSON(t *testing.T) {
	b, origin := backend(t)

	r := run(t, "", "health", "--format", "json", origin)
	require.NoError(t, r.err)

	var got struct {
		Status health.Status `json:"status"`
		Origin string        `json:"origin"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.out), &got))
	assert.Equal(t, health.StatusHealthy, got.Status)
	assert.Equal(t, b.URL, got.Origin)
	assert.Len(t, got.Checks, 2)
}

func TestUnhealthyBackend(t *testing.T) {
	b, origin := backend(t)
	b.Fail(backendtest.RouteHealth, http.StatusServiceUnavailable)

	r := run(t, "", "health", "--no-color", origin)
	require.Error(t, r.err)
	assert.Contains(t, r.out, "unhealthy")
	assert.Equal(t, exitcode.NetworkError, exitcode.DetermineExitCode(r.err))
}
