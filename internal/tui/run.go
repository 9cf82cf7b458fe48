package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/poll"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// RunOptions configures Run.
type RunOptions struct {
	Options

	// Fetch re-reads the tracked project on every poll tick.
	Fetch poll.FetchFunc
	Poll  poll.Config

	// ProgramOptions are appended to the defaults (alt screen, ctx).
	ProgramOptions []tea.ProgramOption
}

// Run shows the dashboard until the user quits or ctx is cancelled.
//
// A poller is attached to ctrl so that every submitted project is refreshed
// in the background; each accepted refresh re-renders the dashboard.
func Run(ctx context.Context, ctrl *dashboard.Controller, opts RunOptions) error {
	model := NewModel(ctx, ctrl, opts.Options)

	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts.ProgramOptions...)
	program := tea.NewProgram(model, programOpts...)

	poller := poll.New(opts.Fetch, func(id string, state *types.ProjectState) {
		if ctrl.ApplyPoll(id, state) {
			program.Send(StateMsg{ProjectID: id})
		}
	}, opts.Poll)
	ctrl.SetTracker(poller)
	defer poller.Stop()

	if id := ctrl.Store().Snapshot().ProjectID(); id != "" {
		poller.Track(id)
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
