package cmd

import (
	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/health"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Long: `Call the backend health endpoint and load the embedded API description.

Exits non-zero when any check is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}
}

func runHealth(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	report := health.NewManager(
		health.NewBackendChecker(cc.Client, cc.Config.Server.Origin),
		health.NewContractChecker(),
	).WithTimeout(cc.Config.Client.Timeout).Report(cmd.Context())
	if err := cc.Print(healthOutput{Report: report, Origin: cc.Client.BaseURL()}); err != nil {
		return err
	}

	if report.Status == health.StatusUnhealthy {
		return errors.New(errors.ErrCodeAPITransport, "backend is unhealthy").
			WithSuggestion("Start the backend or set server.origin")
	}
	return nil
}
