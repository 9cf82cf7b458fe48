package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/health"
	"github.com/autosdlc/autosdlc/internal/metrics"
	"github.com/autosdlc/autosdlc/internal/poll"
	"github.com/autosdlc/autosdlc/internal/preview"
	"github.com/autosdlc/autosdlc/internal/tui"
	"github.com/autosdlc/autosdlc/internal/ux"
	"github.com/autosdlc/autosdlc/internal/version"
)

// Replaced in tests, which have no terminal.
var (
	runTUI        = tui.Run
	isInteractive = tui.IsInteractive
	openBrowser   = preview.OpenBrowser
)

type dashboardOptions struct {
	project   string
	addr      string
	noPreview bool
}

func addDashboardFlags(fs *pflag.FlagSet, o *dashboardOptions) {
	fs.StringVar(&o.project, "project", "", "resume an existing project instead of submitting a new brief")
	fs.StringVar(&o.addr, "addr", "", "preview server address, overrides preview.addr")
	fs.BoolVar(&o.noPreview, "no-preview", false, "do not start the local preview server")
}

func newDashboardCmd() *cobra.Command {
	o := &dashboardOptions{}
	c := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Open the full-screen dashboard.

Type a project brief and press ctrl+s to submit it. The pipeline view
refreshes every poll.interval while the backend works through requirements,
planning, role assignment and code generation. Press ? for all key bindings.

A local preview server serves the prototype and the chat transcript so
they can be opened in a browser with "o".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, o)
		},
	}
	addDashboardFlags(c.Flags(), o)
	return c
}

func runDashboard(cmd *cobra.Command, o *dashboardOptions) error {
	if !isInteractive() {
		return ux.NewErrorWithSuggestion(
			fmt.Errorf("the dashboard needs an interactive terminal"),
			"Use 'autosdlc submit' and 'autosdlc watch' in scripts")
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	ctx := cmd.Context()
	store := dashboard.NewStore()
	ctrl := cc.NewController(store)

	if o.project != "" {
		state, err := cc.Client.GetProject(ctx, o.project)
		if err != nil {
			return err
		}
		store.Restore(state)
	}

	var previewURL string
	if !o.noPreview {
		addr := o.addr
		if addr == "" {
			addr = cc.Config.Preview.Addr
		}
		url, stop, err := startPreview(cc, store, addr)
		if err != nil {
			return err
		}
		defer stop()
		previewURL = url

		if cc.Config.Preview.Open {
			if err := openBrowser(url + "/transcript"); err != nil {
				cc.Logger.WithError(err).Warn("could not open preview")
			}
		}
	}

	return runTUI(ctx, ctrl, tui.RunOptions{
		Options: tui.Options{
			PreviewURL: previewURL,
			Open:       openBrowser,
		},
		Fetch: cc.Client.GetProject,
		Poll: poll.Config{
			Interval: cc.Config.Poll.Interval,
			Logger:   cc.Logger,
			Metrics:  cc.Metrics,
		},
	})
}

// startPreview serves src on addr in the background with backend and
// contract readiness checks. stop shuts the server down.
func startPreview(cc *CommandContext, src preview.Source, addr string) (url string, stop func(), err error) {
	probes := health.NewProbeManager(version.GetInfo().Version,
		health.NewBackendChecker(cc.Client, cc.Config.Server.Origin),
		health.NewContractChecker(),
	)

	srv := preview.New(src, probes, preview.Config{
		Address: addr,
		Refresh: cc.Config.Poll.Interval,
		Metrics: metrics.Handler(),
		Logger:  cc.Logger,
	})
	url, err = srv.Listen()
	if err != nil {
		return "", nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			cc.Logger.Failed(context.Background(), "preview server stopped", err)
		}
	}()

	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			cc.Logger.WithError(err).Warn("preview server shutdown")
		}
		<-done
	}
	return url, stop, nil
}
