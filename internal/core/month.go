package core

import (
	"fmt"
	"strings"
	"time"
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ParseMonthLabel converts a workbook month label like "Jul-25" into a
// MonthKey. The format is a three-letter month abbreviation, a hyphen and a
// two-digit year; matching is case-insensitive. Two-digit years are anchored
// to 2000-2099: the workbook this engine exists for starts in the 2020s, so
// the window never needs to reach an earlier century.
//
// A label that does not match the format fails with ErrInvalidMonthLabel.
// Month ordering is load-bearing for every trend and total downstream, so
// the label is never guessed or coerced.
func ParseMonthLabel(label string) (MonthKey, error) {
	s := strings.TrimSpace(label)
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return MonthKey{}, fmt.Errorf("%w: %q", ErrInvalidMonthLabel, label)
	}
	month, ok := monthAbbrevs[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return MonthKey{}, fmt.Errorf("%w: unknown month in %q", ErrInvalidMonthLabel, label)
	}
	yy := strings.TrimSpace(parts[1])
	if len(yy) != 2 || yy[0] < '0' || yy[0] > '9' || yy[1] < '0' || yy[1] > '9' {
		return MonthKey{}, fmt.Errorf("%w: year must be two digits in %q", ErrInvalidMonthLabel, label)
	}
	year := 2000 + int(yy[0]-'0')*10 + int(yy[1]-'0')
	return MonthKey{Year: year, Month: month}, nil
}
