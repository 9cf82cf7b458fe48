package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/internal/backendtest"
	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/tui"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// stubTerminal pretends to be interactive and runs fn in place of the TUI.
func stubTerminal(t *testing.T, fn func(context.Context, *dashboard.Controller, tui.RunOptions) error) {
	t.Helper()
	prevRun, prevInteractive := runTUI, isInteractive
	runTUI = fn
	isInteractive = func() bool { return true }
	t.Cleanup(func() {
		runTUI = prevRun
		isInteractive = prevInteractive
	})
}

func TestDashboardResumesProject(t *testing.T) {
	b, origin := backend(t)
	putProject(b, "proj-1", backendtest.StagePlan)

	var (
		resumed string
		served  types.ProjectState
	)
	stubTerminal(t, func(ctx context.Context, ctrl *dashboard.Controller, opts tui.RunOptions) error {
		resumed = ctrl.Store().Snapshot().ProjectID()

		res, err := http.Get(opts.PreviewURL + "/state")
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if err := json.NewDecoder(res.Body).Decode(&served); err != nil {
			return err
		}

		_, err = opts.Fetch(ctx, "proj-1")
		return err
	})

	r := run(t, "", "dashboard", "--project", "proj-1", "--addr", "127.0.0.1:0", origin)
	require.NoError(t, r.err)
	assert.Equal(t, "proj-1", resumed)
	assert.Equal(t, "plan_complete", served.Status)
	assert.Equal(t, 2, b.Count(http.MethodGet, "/projects/proj-1"))
}

func TestRootRunsDashboard(t *testing.T) {
	_, origin := backend(t)

	var opts tui.RunOptions
	called := false
	stubTerminal(t, func(_ context.Context, ctrl *dashboard.Controller, o tui.RunOptions) error {
		called = true
		opts = o
		assert.Empty(t, ctrl.Store().Snapshot().ProjectID())
		return nil
	})

	r := run(t, "", "--no-preview", origin)
	require.NoError(t, r.err)
	assert.True(t, called)
	assert.Empty(t, opts.PreviewURL)
	assert.Positive(t, opts.Poll.Interval)
}

func TestDashboardNeedsTerminal(t *testing.T) {
	_, origin := backend(t)

	prev := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = prev })

	r := run(t, "", "dashboard", origin)
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "interactive terminal")
}

func TestDashboardUnknownProject(t *testing.T) {
	_, origin := backend(t)
	stubTerminal(t, func(context.Context, *dashboard.Controller, tui.RunOptions) error {
		t.Fatal("dashboard started without a project")
		return nil
	})

	r := run(t, "", "dashboard", "--project", "proj-404", "--no-preview", origin)
	require.Error(t, r.err)
}
