package sejm

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownMonth is returned by Month for names outside the genitive month table.
var ErrUnknownMonth = errors.New("unknown month")

// Tidy collapses every whitespace run to a single space and trims the ends.
// Whitespace is anything unicode.IsSpace reports, non-breaking spaces included.
func Tidy(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Polish month names in the genitive, as they appear in dates ("15 marca 2008").
// Index 0 is unused so that the index is the month number.
var months = [...]string{
	"",
	"stycznia",
	"lutego",
	"marca",
	"kwietnia",
	"maja",
	"czerwca",
	"lipca",
	"sierpnia",
	"września",
	"października",
	"listopada",
	"grudnia",
}

// Month returns the 1-based month number for a lowercase genitive month name.
// The lookup is case-sensitive; callers lowercase first (see lowerPolish).
func Month(name string) (int, error) {
	for i := 1; i < len(months); i++ {
		if months[i] == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMonth, name)
}

func lowerPolish(s string) string {
	return cases.Lower(language.Polish).String(s)
}

// Slug derives a member id from a wiki title: lowercased, spaces as hyphens.
func Slug(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}
