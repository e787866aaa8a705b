// Package translate formats user-visible messages for the current locale.
package translate

import (
	"errors"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// DEFAULT_LOCALE is used when the host locale cannot be determined.
const DEFAULT_LOCALE = "en-US"

var printer *message.Printer

func init() {
	printer = newPrinter(locale.GetLocales())
}

// newPrinter matches a printer to the detected locales.
func newPrinter(locales []string, err error) *message.Printer {
	if err != nil {
		log.Printf("elfcode: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Error creates a new error from an en-US message key.
func Error(key message.Reference, args ...any) error {
	return errors.New(From(key, args...))
}
