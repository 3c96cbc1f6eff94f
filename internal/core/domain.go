package core

import (
	"fmt"
	"strings"
	"time"
)

// GuestUser is the sentinel owner assigned when no identity is established.
const GuestUser = "guest"

// DateLayout is the calendar-date storage format. Dates carry no timezone.
const DateLayout = "2006-01-02"

type (
	// Expense is one row of the expenses table.
	Expense struct {
		ID          int64   `json:"id"`
		UserID      string  `json:"user_id"`
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Subcategory string  `json:"subcategory"`
		Note        string  `json:"note"`
	}

	// CategoryTotal is one row of a summarize result.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total_amount"`
	}
)

// TrimQuoted removes surrounding whitespace and stray quote characters that
// calling agents occasionally wrap around string arguments, e.g.
// "'2026-01-01'" becomes "2026-01-01".
func TrimQuoted(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'"`)
	return strings.TrimSpace(s)
}

// isBareInteger reports whether s consists solely of ASCII digits. A bare
// year like "2026" is a common caller mistake for a date argument.
func isBareInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateDate rejects date values that are syntactically a bare integer.
// Anything else is passed through to the store untouched; dates are stored
// as text and compared lexicographically.
func ValidateDate(date string) error {
	if isBareInteger(date) {
		return NewError(KindValidation,
			fmt.Sprintf("Error: Invalid date format '%s'. Please use YYYY-MM-DD (e.g., '2026-01-01').", date))
	}
	return nil
}

// ParseDate parses a strict YYYY-MM-DD value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
