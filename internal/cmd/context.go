package cmd

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/config"
	"github.com/autosdlc/autosdlc/internal/contract"
	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/internal/metrics"
	"github.com/autosdlc/autosdlc/internal/telemetry"
	"github.com/autosdlc/autosdlc/internal/ux"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/client"
)

// CommandContext holds the global flags and everything built from them: the
// effective configuration, the logger and the API client. Commands create
// one in RunE and close it when done:
//
//	func runCommand(cmd *cobra.Command, args []string) error {
//		cc, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		defer cc.Close()
//		// Use cc.Client, cc.Config, cc.Print...
//	}
type CommandContext struct {
	// Output control
	Verbose bool
	Format  string
	NoColor bool

	// Overrides
	ConfigFile string
	Origin     string
	LogLevel   string
	Timeout    time.Duration
	Strict     bool

	Config  *config.Config
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Client  *client.Client

	In  io.Reader
	Out io.Writer
	Err io.Writer

	cleanup []func()
}

// NewCommandContext reads the persistent flags of cmd, loads the
// configuration and sets up logging, tracing and the API client.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc, err := commandFlags(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cc.ConfigFile, cc.overrides(cmd))
	if err != nil {
		return nil, err
	}
	cc.Config = cfg

	logger, logCleanup := setupLogging(cfg, cc.Verbose, cc.Err)
	cc.Logger = logger
	cc.cleanup = append(cc.cleanup, logCleanup)
	cc.cleanup = append(cc.cleanup, setupTelemetry(cmd.Context(), cfg, logger))

	ctx, span := telemetry.Command(cmd.Context(), cmd.CommandPath())
	cmd.SetContext(ctx)
	cc.cleanup = append(cc.cleanup, func() { span.End() })

	cc.Metrics = metrics.Default()

	clientCfg := &client.Config{
		Timeout: cfg.Client.Timeout,
		Logger:  logger,
		Metrics: cc.Metrics,
	}
	if cfg.Client.StrictContract {
		validator, err := contract.NewValidator()
		if err != nil {
			cc.Close()
			return nil, err
		}
		clientCfg.Validator = validator
	}
	cc.Client = client.NewWithConfig(cfg.Server.Origin, clientCfg)

	logger.Debug("command context ready",
		"command", cmd.CommandPath(),
		"origin", cfg.Server.Origin,
		"base_url", cc.Client.BaseURL(),
		"config_file", cfg.File,
	)
	return cc, nil
}

func commandFlags(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	origin, err := flags.GetString("origin")
	if err != nil {
		return nil, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	strict, err := flags.GetBool("strict")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Verbose:    verbose,
		Format:     format,
		NoColor:    noColor,
		ConfigFile: configFile,
		Origin:     origin,
		LogLevel:   logLevel,
		Timeout:    timeout,
		Strict:     strict,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Err:        cmd.ErrOrStderr(),
	}, nil
}

// overrides maps the flags that were set to config keys.
func (cc *CommandContext) overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	if cc.Origin != "" {
		out["server.origin"] = cc.Origin
	}
	if cc.LogLevel != "" {
		out["log.level"] = cc.LogLevel
	}
	if cmd.Flags().Changed("timeout") {
		out["client.timeout"] = cc.Timeout
	}
	if cc.Strict {
		out["client.strict_contract"] = true
	}
	return out
}

// Close releases the log file and flushes traces.
func (cc *CommandContext) Close() {
	for i := len(cc.cleanup) - 1; i >= 0; i-- {
		cc.cleanup[i]()
	}
	cc.cleanup = nil
}

// Print writes data to Out in the selected format.
func (cc *CommandContext) Print(data any) error {
	return cc.print(data, false)
}

// PrintLine writes data as one compact record, for streams of results.
func (cc *CommandContext) PrintLine(data any) error {
	return cc.print(data, true)
}

func (cc *CommandContext) print(data any, compact bool) error {
	f, err := ux.NewFormatter(cc.Format, &ux.FormatterOptions{
		Writer:  cc.Out,
		NoColor: cc.NoColor,
		Compact: compact,
	})
	if err != nil {
		return err
	}
	return f.Format(data)
}

// NewController creates a dashboard controller on store using the
// configured brief metadata.
func (cc *CommandContext) NewController(store *dashboard.Store) *dashboard.Controller {
	return dashboard.NewController(cc.Client, store, dashboard.Options{
		Logger:      cc.Logger,
		Metrics:     cc.Metrics,
		Name:        cc.Config.Brief.Name,
		Description: cc.Config.Brief.Description,
	})
}
