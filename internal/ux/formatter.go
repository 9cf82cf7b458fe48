package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted --format values.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// Formatter writes one command result.
type Formatter interface {
	Format(data any) error
}

// TextRenderer is implemented by results with a human-readable form.
// styled is false under --no-color.
type TextRenderer interface {
	RenderText(w io.Writer, styled bool) error
}

// FormatterOptions configures NewFormatter. A nil Writer means stdout.
type FormatterOptions struct {
	Writer  io.Writer
	NoColor bool
	// Compact writes one record per line for json and flow style for yaml.
	Compact bool
}

type formatFunc func(data any) error

func (f formatFunc) Format(data any) error { return f(data) }

// NewFormatter returns the formatter for one of Formats. The empty string
// selects text.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	o := FormatterOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Writer == nil {
		o.Writer = os.Stdout
	}

	switch strings.ToLower(format) {
	case FormatText, "":
		return formatFunc(o.text), nil
	case FormatJSON:
		return formatFunc(o.json), nil
	case FormatYAML:
		return formatFunc(o.yaml), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}

func (o FormatterOptions) json(data any) error {
	enc := json.NewEncoder(o.Writer)
	if !o.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func (o FormatterOptions) yaml(data any) error {
	if o.Compact {
		// One flow-style document per record keeps streams line oriented.
		var node yaml.Node
		if err := node.Encode(data); err != nil {
			return err
		}
		node.Style = yaml.FlowStyle
		data = &node
	}
	enc := yaml.NewEncoder(o.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (o FormatterOptions) text(data any) error {
	switch v := data.(type) {
	case TextRenderer:
		return v.RenderText(o.Writer, !o.NoColor)
	case string:
		_, err := fmt.Fprintln(o.Writer, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(o.Writer, v.String())
		return err
	default:
		return fmt.Errorf("text output is not available for %T, use --format json or yaml", data)
	}
}
