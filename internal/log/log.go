// Package log wraps slog with the fields autosdlc attaches to every record:
// service, version, component and, where one is known, the project id.
//
// Records are discarded unless a sink is configured, so nothing reaches the
// terminal while the dashboard owns it.
package log

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"github.com/autosdlc/autosdlc/internal/errors"
)

// Level is a slog level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel accepts slog level names, plus "warning". Anything else is info.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo
	}
	return l
}

// Format selects the record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat maps "text" and "console" to FormatText and everything else
// to FormatJSON.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "console":
		return FormatText
	default:
		return FormatJSON
	}
}

// Config describes a logger. A nil Output discards records.
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	AddSource bool

	Service string
	Version string
}

// Logger is a slog.Logger with autosdlc helpers.
type Logger struct {
	*slog.Logger
}

// New builds a logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = io.Discard
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var h slog.Handler
	if cfg.Format == FormatText {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	l := slog.New(h)
	if cfg.Service != "" {
		l = l.With("service", cfg.Service, "version", cfg.Version)
	}
	return &Logger{Logger: l}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Config{Level: LevelError + 1})
}

// With returns a logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component tags records with the subsystem that emitted them.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// WithProject tags records with a backend project id.
func (l *Logger) WithProject(id string) *Logger {
	if id == "" {
		return l
	}
	return l.With("project_id", id)
}

// WithError attaches err. Coded errors add error_code, suggestions and cause.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	var coded *errors.AutosdlcError
	if !stderrors.As(err, &coded) {
		return l.With("error", err.Error())
	}

	args := []any{"error", coded.Message, "error_code", string(coded.Code)}
	if len(coded.Suggestions) > 0 {
		args = append(args, "suggestions", coded.Suggestions)
	}
	if coded.Cause != nil {
		args = append(args, "cause", coded.Cause.Error())
	}
	return l.With(args...)
}

// Failed logs err at error level under msg.
func (l *Logger) Failed(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}
	l.WithError(err).ErrorContext(ctx, msg)
}
