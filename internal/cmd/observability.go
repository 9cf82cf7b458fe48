package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/autosdlc/autosdlc/internal/config"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/internal/telemetry"
	"github.com/autosdlc/autosdlc/internal/ux"
	"github.com/autosdlc/autosdlc/internal/version"
)

// LogFileName is the log file written under ux.LogDir when log.file is set.
const LogFileName = "autosdlc.log"

// logSink collects the writers log records go to. Without --verbose or
// log.file it is empty and records are dropped; the dashboard owns the
// terminal.
type logSink struct {
	writers []io.Writer
	file    *os.File
}

func openLogSink(cfg *config.Config, verbose bool, stderr io.Writer) *logSink {
	s := &logSink{}
	if verbose && stderr != nil {
		s.writers = append(s.writers, stderr)
	}
	if cfg.Log.File {
		dir := ux.LogDir()
		if err := os.MkdirAll(dir, 0o750); err == nil {
			f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err == nil {
				s.file = f
				s.writers = append(s.writers, f)
			}
		}
	}
	return s
}

// Writer returns nil when nothing should be written.
func (s *logSink) Writer() io.Writer {
	switch len(s.writers) {
	case 0:
		return nil
	case 1:
		return s.writers[0]
	default:
		return io.MultiWriter(s.writers...)
	}
}

// Path is the log file in use, if any.
func (s *logSink) Path() string {
	if s.file == nil {
		return ""
	}
	return s.file.Name()
}

func (s *logSink) Close() {
	if s.file != nil {
		_ = s.file.Close()
	}
}

func setupLogging(cfg *config.Config, verbose bool, stderr io.Writer) (*log.Logger, func()) {
	sink := openLogSink(cfg, verbose, stderr)

	level := log.ParseLevel(cfg.Log.Level)
	if verbose && level > log.LevelDebug {
		level = log.LevelDebug
	}

	logger := log.New(log.Config{
		Level:   level,
		Format:  log.ParseFormat(cfg.Log.Format),
		Output:  sink.Writer(),
		Service: "autosdlc",
		Version: version.GetInfo().Version,
	})
	log.SetDefaultLogger(logger)

	if path := sink.Path(); path != "" {
		logger.Debug("logging to file", "path", path)
	}
	return logger, sink.Close
}

func setupTelemetry(ctx context.Context, cfg *config.Config, logger *log.Logger) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}

	tc := telemetry.Config{
		Service:    "autosdlc",
		Version:    version.GetInfo().Version,
		Endpoint:   cfg.Telemetry.Endpoint,
		SampleRate: cfg.Telemetry.SampleRate,
	}
	shutdown, err := telemetry.Start(ctx, tc)
	if err != nil {
		logger.WithError(err).Warn("telemetry disabled")
		return func() {}
	}
	logger.Info("telemetry enabled", "endpoint", tc.Endpoint, "sample_rate", tc.SampleRate)

	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Failed(flushCtx, "telemetry flush", shutdown(flushCtx))
	}
}
