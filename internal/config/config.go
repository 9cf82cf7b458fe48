// Package config handles application configuration using Viper.
//
// Values come, in increasing precedence, from defaults, the config file,
// AUTOSDLC_* environment variables (AUTOSDLC_SERVER_ORIGIN for
// server.origin) and explicit overrides such as command-line flags.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/ux"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AUTOSDLC"

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
	Client    ClientConfig    `mapstructure:"client" yaml:"client" json:"client"`
	Poll      PollConfig      `mapstructure:"poll" yaml:"poll" json:"poll"`
	Brief     BriefConfig     `mapstructure:"brief" yaml:"brief" json:"brief"`
	Preview   PreviewConfig   `mapstructure:"preview" yaml:"preview" json:"preview"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export" json:"export"`
	Log       LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	Origin string `mapstructure:"origin" yaml:"origin" json:"origin"`
}

// ClientConfig tunes API requests.
type ClientConfig struct {
	// Timeout bounds each request; 0 waits forever.
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	StrictContract bool          `mapstructure:"strict_contract" yaml:"strict_contract" json:"strict_contract"`
}

// PollConfig tunes project refreshes.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`
}

// BriefConfig holds the metadata sent with every brief.
type BriefConfig struct {
	Name        string `mapstructure:"name" yaml:"name" json:"name"`
	Description string `mapstructure:"description" yaml:"description" json:"description"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
	Open bool   `mapstructure:"open" yaml:"open" json:"open"`
}

// ExportConfig configures artifact export commits.
type ExportConfig struct {
	AuthorName  string `mapstructure:"author_name" yaml:"author_name" json:"author_name"`
	AuthorEmail string `mapstructure:"author_email" yaml:"author_email" json:"author_email"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// File enables logging to a file under ~/.autosdlc/logs.
	File bool `mapstructure:"file" yaml:"file" json:"file"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
}

// Load reads configuration from file and environment. An empty configPath
// searches for .autosdlc/config.yaml from the working directory upwards and
// then in the home directory; a missing file is not an error in that case.
// overrides are applied last, keyed by dotted config key.
func Load(configPath string, overrides map[string]any) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	explicit := configPath != ""
	if !explicit {
		if cwd, err := os.Getwd(); err == nil {
			configPath = ux.DiscoverConfigFile(cwd)
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !stderrors.As(err, &notFound) {
				return nil, errors.Wrap(errors.ErrCodeConfigRead,
					fmt.Sprintf("failed to read config %s", configPath), err)
			}
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode config", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Origin) == "" {
		return invalid("server.origin must not be empty")
	}
	if c.Poll.Interval <= 0 {
		return invalid(fmt.Sprintf("poll.interval must be positive, got %s", c.Poll.Interval))
	}
	if c.Client.Timeout < 0 {
		return invalid(fmt.Sprintf("client.timeout must not be negative, got %s", c.Client.Timeout))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return invalid(fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return invalid(fmt.Sprintf("telemetry.sample_rate must be within [0, 1], got %v", c.Telemetry.SampleRate))
	}
	return nil
}

func invalid(msg string) error {
	return errors.New(errors.ErrCodeConfigInvalid, msg).
		WithSuggestion("Run 'autosdlc config' to see the effective configuration")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.origin", "http://localhost:8000")
	v.SetDefault("client.timeout", time.Duration(0))
	v.SetDefault("client.strict_contract", false)
	v.SetDefault("poll.interval", 2*time.Second)
	v.SetDefault("brief.name", "Project")
	v.SetDefault("brief.description", "Auto")
	v.SetDefault("preview.addr", "127.0.0.1:7878")
	v.SetDefault("preview.open", false)
	v.SetDefault("export.author_name", "AutoSDLC")
	v.SetDefault("export.author_email", "autosdlc@localhost")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", false)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	v := viper.New()

	v.Set("server.origin", cfg.Server.Origin)
	v.Set("client.timeout", cfg.Client.Timeout.String())
	v.Set("client.strict_contract", cfg.Client.StrictContract)
	v.Set("poll.interval", cfg.Poll.Interval.String())
	v.Set("brief.name", cfg.Brief.Name)
	v.Set("brief.description", cfg.Brief.Description)
	v.Set("preview.addr", cfg.Preview.Addr)
	v.Set("preview.open", cfg.Preview.Open)
	v.Set("export.author_name", cfg.Export.AuthorName)
	v.Set("export.author_email", cfg.Export.AuthorEmail)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("telemetry.enabled", cfg.Telemetry.Enabled)
	v.Set("telemetry.endpoint", cfg.Telemetry.Endpoint)
	v.Set("telemetry.sample_rate", cfg.Telemetry.SampleRate)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write config %s", path), err)
	}
	return nil
}
