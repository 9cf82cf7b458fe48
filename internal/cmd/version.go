package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/ux"
	"github.com/autosdlc/autosdlc/internal/version"
)

// Runs without a CommandContext so it works with a broken config file.
func newVersionCmd() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			flags := cmd.Flags()
			format, _ := flags.GetString("format")
			if asJSON {
				format = ux.FormatJSON
			}
			verbose, _ := flags.GetBool("verbose")
			noColor, _ := flags.GetBool("no-color")

			var data any = info
			if !verbose && (format == "" || strings.EqualFold(format, ux.FormatText)) {
				data = "autosdlc " + info.Short()
			}
			f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: noColor})
			if err != nil {
				return err
			}
			if err := f.Format(data); err != nil {
				return fmt.Errorf("version: %w", err)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "shorthand for --format json")
	return c
}
