package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosdlc/autosdlc/internal/errors"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Server.Origin)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Zero(t, cfg.Client.Timeout)
	assert.False(t, cfg.Client.StrictContract)
	assert.Equal(t, "Project", cfg.Brief.Name)
	assert.Equal(t, "Auto", cfg.Brief.Description)
	assert.Equal(t, "127.0.0.1:7878", cfg.Preview.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.File)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  origin: https://sdlc.example.com
poll:
  interval: 500ms
client:
  timeout: 30s
  strict_contract: true
log:
  level: debug
  format: text
`), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://sdlc.example.com", cfg.Server.Origin)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.True(t, cfg.Client.StrictContract)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)
	// untouched keys keep defaults
	assert.Equal(t, "127.0.0.1:7878", cfg.Preview.Addr)
}

func TestLoadDiscoversProjectConfig(t *testing.T) {
	isolate(t)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	dir := filepath.Join(cwd, ".autosdlc")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("server:\n  origin: http://backend:9000\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.Server.Origin)
}

func TestLoadEnvAndOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AUTOSDLC_SERVER_ORIGIN", "http://from-env:8000")
	t.Setenv("AUTOSDLC_POLL_INTERVAL", "5s")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", cfg.Server.Origin)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)

	cfg, err = Load("", map[string]any{"server.origin": "http://from-flag:8000"})
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:8000", cfg.Server.Origin)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Equal(t, errors.ErrCodeConfigRead, errors.Code(err))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("poll: [unclosed"), 0o600))
	_, err = Load(bad, nil)
	assert.Equal(t, errors.ErrCodeConfigRead, errors.Code(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty origin", func(c *Config) { c.Server.Origin = " " }},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"negative timeout", func(c *Config) { c.Client.Timeout = -time.Second }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 1.5 }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.Code(err))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Server.Origin = "https://saved.example.com"
	cfg.Poll.Interval = 3 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com", loaded.Server.Origin)
	assert.Equal(t, 3*time.Second, loaded.Poll.Interval)
}
