package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/autosdlc/autosdlc/internal/errors"
)

// ErrorWithSuggestion is an error with one recovery hint, printed after a
// blank line.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
}

func (e *ErrorWithSuggestion) Unwrap() error { return e.Err }

// NewErrorWithSuggestion attaches suggestion to err. A nil err stays nil.
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{Err: err, Suggestion: suggestion}
}

// hint suggests a fix for errors whose message contains all of match.
type hint struct {
	match      []string
	suggestion string
}

// Ordered: the first matching hint wins.
var hints = []hint{
	{[]string{"connection refused"}, "Start the AutoSDLC backend or point --origin at a running one"},
	{[]string{"no such host"}, "Start the AutoSDLC backend or point --origin at a running one"},
	{[]string{"HTTP status 404"}, "The project id is unknown to this backend; list projects with 'autosdlc projects'"},
	{[]string{"HTTP status 5"}, "The backend failed to handle the request; check its logs and try again"},
	{[]string{"no such file or directory", "config"}, "Create ~/.autosdlc/config.yaml or pass --config with an existing file"},
	{[]string{"no such file or directory"}, "Check if the file path is correct"},
	{[]string{"permission denied"}, "Check the permissions of ~/.autosdlc and the export directory"},
	{[]string{"address already in use"}, "Choose another preview address with --addr or preview.addr"},
}

// EnhanceError adds a recovery suggestion to errors that carry none.
// Coded errors with their own suggestions are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *errors.AutosdlcError
	if stderrors.As(err, &coded) && len(coded.Suggestions) > 0 {
		return err
	}

	msg := err.Error()
	for _, h := range hints {
		if containsAll(msg, h.match) {
			return NewErrorWithSuggestion(err, h.suggestion)
		}
	}
	return err
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
