package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/poll"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

type watchOptions struct {
	untilComplete bool
	interval      time.Duration
}

func newWatchCmd() *cobra.Command {
	o := &watchOptions{}
	c := &cobra.Command{
		Use:   "watch <project-id>",
		Short: "Follow a project as the pipeline runs",
		Long: `Poll a project and print a line whenever its state changes.

Changes are detected by a digest of the full project state, so agent status
updates are reported as well as new requirements, tasks and files. Runs until
interrupted, or with --until-complete until code has been generated.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjectIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			state, err := cc.Client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return watchProject(cmd.Context(), cc, state, *o)
		},
	}
	c.Flags().BoolVar(&o.untilComplete, "until-complete", false, "exit once requirements, plan, roles and code are complete")
	c.Flags().DurationVar(&o.interval, "interval", 0, "poll interval, overrides poll.interval")
	return c
}

// watchProject prints initial and then every changed state of its project.
func watchProject(ctx context.Context, cc *CommandContext, initial *types.ProjectState, o watchOptions) error {
	last, err := dashboard.Digest(initial)
	if err != nil {
		return err
	}
	if err := cc.PrintLine(watchEvent{At: time.Now(), Digest: last, State: initial}); err != nil {
		return err
	}
	if o.untilComplete && dashboard.PipelineComplete(initial) {
		return nil
	}

	interval := o.interval
	if interval <= 0 {
		interval = cc.Config.Poll.Interval
	}

	// Only the newest state matters; a full buffer drops the update and the
	// next tick brings a fresher one.
	updates := make(chan *types.ProjectState, 1)
	poller := poll.New(cc.Client.GetProject, func(_ string, state *types.ProjectState) {
		select {
		case updates <- state:
		default:
		}
	}, poll.Config{Interval: interval, Logger: cc.Logger, Metrics: cc.Metrics})
	poller.Track(initial.ID)
	defer poller.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state := <-updates:
			digest, err := dashboard.Digest(state)
			if err != nil {
				return err
			}
			if digest == last {
				continue
			}
			last = digest
			if err := cc.PrintLine(watchEvent{At: time.Now(), Digest: digest, State: state}); err != nil {
				return err
			}
			if o.untilComplete && dashboard.PipelineComplete(state) {
				return nil
			}
		}
	}
}
