package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

// monthWords maps every accepted month spelling to its calendar month.
var monthWords = map[string]clan.Month{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

const monthAlternation = `(january|february|march|april|may|june|july|august|september|sept|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)`

var (
	monthRangeRe  = regexp.MustCompile(`\b` + monthAlternation + `\b[\s\-]+\b` + monthAlternation + `\b\s+(\d{4})\b`)
	singleMonthRe = regexp.MustCompile(`\b` + monthAlternation + `\b\s+(\d{4})\b`)
)

// NormalizeMonth extracts the reporting period referenced by text.
//
// A month range ("APR-MAY 2025", "april may 2025") is tried first so that it
// is never read as a single month; then a single month ("APR 2025",
// "april 2025"). The leftmost match wins. ok is false when text names no
// period.
func NormalizeMonth(text string) (period clan.Period, ok bool) {
	t := strings.ToLower(text)

	if m := monthRangeRe.FindStringSubmatch(t); m != nil {
		year, err := strconv.Atoi(m[3])
		if err == nil {
			return clan.MonthRange(monthWords[m[1]], monthWords[m[2]], year), true
		}
	}

	if m := singleMonthRe.FindStringSubmatch(t); m != nil {
		year, err := strconv.Atoi(m[2])
		if err == nil {
			return clan.SingleMonth(monthWords[m[1]], year), true
		}
	}

	return clan.Period{}, false
}
