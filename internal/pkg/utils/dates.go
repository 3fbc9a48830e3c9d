package utils

import (
	"time"

	"railway/internal/domain"
)

// DisplayLayout is how dates appear on tickets.
const DisplayLayout = "02 Jan 2006"

// Today formats the calendar day of now in domain.DateLayout.
func Today(now time.Time) string {
	return now.Format(domain.DateLayout)
}

// ParseDate parses a journey date in the location of ref.
func ParseDate(s string, ref time.Time) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, s, ref.Location())
}

// DisplayDate renders a journey date like "05 Nov 2026". Unparseable input is
// returned as is.
func DisplayDate(s string) string {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(DisplayLayout)
}
