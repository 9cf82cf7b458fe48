// Package cmd implements the autosdlc command line.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/exitcode"
	"github.com/autosdlc/autosdlc/internal/ux"
	"github.com/autosdlc/autosdlc/internal/version"
)

// NewRootCmd builds the autosdlc command tree. Running it without a
// subcommand opens the dashboard.
func NewRootCmd() *cobra.Command {
	dash := &dashboardOptions{}

	root := &cobra.Command{
		Use:   "autosdlc",
		Short: "Terminal dashboard for the AutoSDLC pipeline",
		Long: `autosdlc drives an AutoSDLC backend from the terminal.

Submit a natural-language project brief and follow the pipeline as it
extracts requirements, plans the work, assigns roles and generates code.
Generate an HTML prototype from the result and ask the assistant about the
plan, architecture or costs.

Run without a subcommand to open the interactive dashboard.

` + exitCodeHelp(),
		Version:       version.GetInfo().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, dash)
		},
	}
	root.SetVersionTemplate("autosdlc {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default .autosdlc/config.yaml, searched upwards, then in $HOME)")
	flags.String("origin", "", "backend origin, overrides server.origin")
	flags.StringP("format", "f", ux.FormatText, "output format: "+strings.Join(ux.Formats(), ", "))
	_ = root.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ux.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable styled output")
	flags.BoolP("verbose", "v", false, "also write logs to stderr")
	flags.Duration("timeout", 0, "per-request timeout, overrides client.timeout")
	flags.Bool("strict", false, "reject responses that do not match the API contract")

	addDashboardFlags(root.Flags(), dash)

	root.AddCommand(
		newDashboardCmd(),
		newSubmitCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newPrototypeCmd(),
		newChatCmd(),
		newProjectsCmd(),
		newHealthCmd(),
		newExportCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func exitCodeHelp() string {
	var b strings.Builder
	b.WriteString("Exit codes:\n")
	for _, code := range exitcode.Codes() {
		fmt.Fprintf(&b, "  %3d  %s\n", code, exitcode.GetExitCodeDescription(code))
	}
	return b.String()
}
