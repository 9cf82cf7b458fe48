package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// API errors (API-001 to API-099)
	ErrCodeAPITransport ErrorCode = "API-001"
	ErrCodeAPIStatus    ErrorCode = "API-002"
	ErrCodeAPIDecode    ErrorCode = "API-003"
	ErrCodeAPIContract  ErrorCode = "API-004"

	// Input errors (INPUT-001 to INPUT-099)
	ErrCodeEmptyBrief           ErrorCode = "INPUT-001"
	ErrCodeEmptyMessage         ErrorCode = "INPUT-002"
	ErrCodePrototypeUnavailable ErrorCode = "INPUT-003"
	ErrCodeNoProject            ErrorCode = "INPUT-004"
	ErrCodeBusy                 ErrorCode = "INPUT-005"
	ErrCodeNoArtifacts          ErrorCode = "INPUT-006"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeUnsafePath      ErrorCode = "IO-005"
	ErrCodeGitFailed       ErrorCode = "IO-006"
	ErrCodeBrowserOpen     ErrorCode = "IO-007"
	ErrCodeListenFailed    ErrorCode = "IO-008"
)

// AutosdlcError represents an enhanced error with code, suggestions, and documentation
type AutosdlcError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *AutosdlcError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AutosdlcError) Unwrap() error {
	return e.Cause
}

// Is matches another AutosdlcError by code, so sentinel values can be used
// with errors.Is.
func (e *AutosdlcError) Is(target error) bool {
	t, ok := target.(*AutosdlcError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// New creates a new AutosdlcError
func New(code ErrorCode, message string) *AutosdlcError {
	return &AutosdlcError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AutosdlcError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AutosdlcError {
	return &AutosdlcError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *AutosdlcError) WithSuggestion(suggestion string) *AutosdlcError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AutosdlcError) WithSuggestions(suggestions ...string) *AutosdlcError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *AutosdlcError) WithDocs(url string) *AutosdlcError {
	e.DocsURL = url
	return e
}

// Code extracts the error code from err, or "" if err carries none.
func Code(err error) ErrorCode {
	for err != nil {
		if e, ok := err.(*AutosdlcError); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Sentinels usable with errors.Is; they match any error with the same code.
var (
	ErrEmptyBrief           = &AutosdlcError{Code: ErrCodeEmptyBrief}
	ErrEmptyMessage         = &AutosdlcError{Code: ErrCodeEmptyMessage}
	ErrPrototypeUnavailable = &AutosdlcError{Code: ErrCodePrototypeUnavailable}
	ErrNoProject            = &AutosdlcError{Code: ErrCodeNoProject}
	ErrBusy                 = &AutosdlcError{Code: ErrCodeBusy}
	ErrNoArtifacts          = &AutosdlcError{Code: ErrCodeNoArtifacts}
)

// Common error constructors for frequently used errors

// NewTransportError creates an error for a request that never got a response
func NewTransportError(op string, cause error) *AutosdlcError {
	return Wrap(ErrCodeAPITransport, fmt.Sprintf("connection error during %s", op), cause).
		WithSuggestion("Check that the AutoSDLC backend is running").
		WithSuggestion("Verify server.origin with 'autosdlc config'")
}

// NewStatusError creates an error for a non-success HTTP status
func NewStatusError(op string, status int) *AutosdlcError {
	return New(ErrCodeAPIStatus, fmt.Sprintf("%s failed with HTTP status %d", op, status))
}

// NewDecodeError creates an error for an undecodable response body
func NewDecodeError(op string, cause error) *AutosdlcError {
	return Wrap(ErrCodeAPIDecode, fmt.Sprintf("invalid response body for %s", op), cause).
		WithSuggestion("Make sure the origin points at an AutoSDLC backend")
}

// NewContractError creates an error for a response that violates the API description
func NewContractError(op string, cause error) *AutosdlcError {
	return Wrap(ErrCodeAPIContract, fmt.Sprintf("response for %s does not match the API contract", op), cause).
		WithSuggestion("Disable client.strict_contract to accept the response anyway")
}

// NewEmptyBriefError creates an error for a blank project brief
func NewEmptyBriefError() *AutosdlcError {
	return New(ErrCodeEmptyBrief, "project brief is empty").
		WithSuggestion("Pass the brief as an argument, via --file, or interactively")
}

// NewEmptyMessageError creates an error for a blank chat message
func NewEmptyMessageError() *AutosdlcError {
	return New(ErrCodeEmptyMessage, "chat message is empty")
}

// NewPrototypeUnavailableError creates an error for a prototype request made too early
func NewPrototypeUnavailableError(projectID string) *AutosdlcError {
	return New(ErrCodePrototypeUnavailable, fmt.Sprintf("project %s has no generated code yet", projectID)).
		WithSuggestion(fmt.Sprintf("Run 'autosdlc watch %s --until-complete' first", projectID))
}

// NewNoArtifactsError creates an error for exporting a project without generated code
func NewNoArtifactsError(projectID string) *AutosdlcError {
	return New(ErrCodeNoArtifacts, fmt.Sprintf("project %s has no generated files to export", projectID)).
		WithSuggestion(fmt.Sprintf("Run 'autosdlc watch %s --until-complete' first", projectID))
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *AutosdlcError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewUnsafePathError creates an error for an artifact path escaping the export directory
func NewUnsafePathError(path string) *AutosdlcError {
	return New(ErrCodeUnsafePath, fmt.Sprintf("refusing to write outside the export directory: %s", path))
}
