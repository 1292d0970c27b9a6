package clan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Month is a calendar month, 1 (January) through 12 (December).
type Month int

var monthCodes = [...]string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// Code returns the canonical three-letter uppercase code, e.g. "APR".
func (m Month) Code() string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthCodes[m]
}

// MonthFromCode parses a three-letter month code, case-insensitively.
func MonthFromCode(code string) (Month, bool) {
	code = strings.ToUpper(code)
	for i := 1; i < len(monthCodes); i++ {
		if monthCodes[i] == code {
			return Month(i), true
		}
	}
	return 0, false
}

// PeriodKind distinguishes single-month periods from month ranges.
type PeriodKind string

const (
	Single PeriodKind = "single"
	Range  PeriodKind = "range"
)

// Period is a canonical reporting period. For a range, Year names the end
// month; a start month later in the calendar than the end month belongs to
// the previous year (DEC-JAN_2025 spans December 2024 to January 2025).
type Period struct {
	Kind  PeriodKind
	Start Month
	End   Month
	Year  int
}

// SingleMonth returns the period covering one month.
func SingleMonth(m Month, year int) Period {
	return Period{Kind: Single, Start: m, End: m, Year: year}
}

// MonthRange returns the period from start to end, where year is the year of
// the end month.
func MonthRange(start, end Month, year int) Period {
	return Period{Kind: Range, Start: start, End: end, Year: year}
}

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool {
	return p.Kind == ""
}

// String returns the canonical identifier: "APR_2025" or "APR-MAY_2025".
func (p Period) String() string {
	switch p.Kind {
	case Single:
		return fmt.Sprintf("%s_%d", p.Start.Code(), p.Year)
	case Range:
		return fmt.Sprintf("%s-%s_%d", p.Start.Code(), p.End.Code(), p.Year)
	}
	return ""
}

// Readable returns the identifier with the underscore replaced by a space,
// e.g. "APR 2025".
func (p Period) Readable() string {
	return strings.ReplaceAll(p.String(), "_", " ")
}

var canonicalPeriodRe = regexp.MustCompile(`^([A-Za-z]{3})(?:-([A-Za-z]{3}))?_(\d{4})$`)

// ParsePeriod parses a canonical identifier such as "APR_2025" or
// "DEC-JAN_2025".
func ParsePeriod(s string) (Period, error) {
	m := canonicalPeriodRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	start, ok := MonthFromCode(m[1])
	if !ok {
		return Period{}, fmt.Errorf("invalid period %q: unknown month %q", s, m[1])
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	if m[2] == "" {
		return SingleMonth(start, year), nil
	}
	end, ok := MonthFromCode(m[2])
	if !ok {
		return Period{}, fmt.Errorf("invalid period %q: unknown month %q", s, m[2])
	}
	return MonthRange(start, end, year), nil
}
