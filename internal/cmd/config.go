package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autosdlc/autosdlc/internal/config"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/tui"
	"github.com/autosdlc/autosdlc/internal/ux"
)

// Replaced in tests.
var confirm = tui.PromptForConfirmation

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "View or create the autosdlc configuration",
		Long: `Manage the configuration stored at ~/.autosdlc/config.yaml, or in
.autosdlc/config.yaml of the current project.

Values are layered: defaults, then the config file, then AUTOSDLC_*
environment variables (AUTOSDLC_SERVER_ORIGIN for server.origin), then
command-line flags.

Examples:
  # Show the effective configuration
  autosdlc config

  # Show which file is used
  autosdlc config path

  # Write a config file with the defaults
  autosdlc config init --origin https://autosdlc.example.com
`,
		Args: cobra.NoArgs,
		RunE: runConfigView,
	}

	view := &cobra.Command{
		Use:   "view",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigView,
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file without asking")

	c.AddCommand(view, path, initCmd)
	return c
}

// configOutput prints a configuration as YAML in text mode.
type configOutput struct {
	*config.Config
}

func (c configOutput) MarshalYAML() (any, error) {
	return c.Config, nil
}

func (c configOutput) RenderText(w io.Writer, _ bool) error {
	if c.File != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", c.File); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Config); err != nil {
		return err
	}
	return enc.Close()
}

func runConfigView(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	return cc.Print(configOutput{Config: cc.Config})
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Close()

	path := cc.Config.File
	if path == "" {
		path = defaultConfigPath()
		fmt.Fprintf(cc.Err, "No config file found; %s would be used\n", path)
	}
	_, err = fmt.Fprintln(cc.Out, path)
	return err
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	flags, err := commandFlags(cmd)
	if err != nil {
		return err
	}

	path := flags.ConfigFile
	if path == "" {
		path = defaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		if !shouldPrompt() {
			return errors.New(errors.ErrCodeFileWriteFailed, fmt.Sprintf("%s already exists", path)).
				WithSuggestion("Pass --force to overwrite it")
		}
		ok, err := confirm(fmt.Sprintf("Overwrite %s?", path), false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	cfg := config.Default()
	if flags.Origin != "" {
		cfg.Server.Origin = flags.Origin
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Client.Timeout = flags.Timeout
	}
	if flags.Strict {
		cfg.Client.StrictContract = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	_, err = fmt.Fprintf(flags.Out, "Wrote %s\n", path)
	return err
}

func defaultConfigPath() string {
	return filepath.Join(ux.HomeDir(), ux.ConfigFileName)
}
