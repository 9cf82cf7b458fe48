package preview

import (
	"github.com/skratchdot/open-golang/open"

	"github.com/autosdlc/autosdlc/internal/errors"
)

var defaultOpenURL = open.Run

// openURL is replaced in tests.
var openURL = defaultOpenURL

// OpenBrowser opens target in the user's default browser.
func OpenBrowser(target string) error {
	if err := openURL(target); err != nil {
		return errors.Wrap(errors.ErrCodeBrowserOpen, "failed to open browser", err).
			WithSuggestion("Open " + target + " manually")
	}
	return nil
}
