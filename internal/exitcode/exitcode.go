// Package exitcode maps command errors onto process exit statuses.
package exitcode

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/autosdlc/autosdlc/internal/errors"
)

const (
	Success       = 0
	GeneralError  = 1
	UsageError    = 2 // bad flags, arguments or configuration
	BackendError  = 3 // non-2xx from the backend
	ContractError = 4 // 2xx with a body we cannot use
	InputError    = 5 // blank brief, prototype before code exists
	NetworkError  = 6
	IOError       = 7 // local files or git
	Interrupted   = 130
)

var descriptions = map[int]string{
	Success:       "Success",
	GeneralError:  "General error",
	UsageError:    "Usage error (invalid flags, arguments or configuration)",
	BackendError:  "Backend request failed",
	ContractError: "Unexpected backend response",
	InputError:    "Invalid input",
	NetworkError:  "Network error",
	IOError:       "File system or git error",
	Interrupted:   "Interrupted",
}

var byCode = map[errors.ErrorCode]int{
	errors.ErrCodeAPITransport: NetworkError,
	errors.ErrCodeAPIStatus:    BackendError,
	errors.ErrCodeAPIDecode:    ContractError,
	errors.ErrCodeAPIContract:  ContractError,
}

var byCategory = map[string]int{
	"INPUT":  InputError,
	"CONFIG": UsageError,
	"IO":     IOError,
}

// Uncoded errors fall back to message matching; all words of an entry must
// appear.
var byMessage = []struct {
	words []string
	code  int
}{
	{[]string{"connection refused"}, NetworkError},
	{[]string{"no such host"}, NetworkError},
	{[]string{"timeout"}, NetworkError},
	{[]string{"unreachable"}, NetworkError},
	{[]string{"unknown flag"}, UsageError},
	{[]string{"unknown command"}, UsageError},
	{[]string{"required flag"}, UsageError},
	{[]string{"accepts", "arg(s)"}, UsageError},
}

// Exit terminates the process.
func Exit(code int) { os.Exit(code) }

// DetermineExitCode maps err to an exit status, preferring its error code.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	code := errors.Code(err)
	if c, ok := byCode[code]; ok {
		return c
	}
	if category, _, found := strings.Cut(string(code), "-"); found {
		if c, ok := byCategory[category]; ok {
			return c
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range byMessage {
		if containsAll(msg, m.words) {
			return m.code
		}
	}
	return GeneralError
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

// GetExitCodeDescription describes code for help output.
func GetExitCodeDescription(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown error"
}

// Codes lists every status the CLI exits with, ascending.
func Codes() []int {
	return slices.Sorted(maps.Keys(descriptions))
}
