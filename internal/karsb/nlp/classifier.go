// Package nlp holds the deterministic text analysis that runs before any
// dataset is touched: input triage, month normalisation, near-miss hints and
// dataset-domain routing.
//
// Everything here is a pure function of its input. There are no models and no
// I/O; matching is done with substrings and regular expressions only.
package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// InputKind is the coarse category assigned to raw user input.
type InputKind string

const (
	InputEmpty             InputKind = "EMPTY"
	InputGreeting          InputKind = "GREETING"
	InputGibberish         InputKind = "GIBBERISH"
	InputPossibleClanQuery InputKind = "POSSIBLE_CLAN_QUERY"
)

// greetings are matched exactly against the trimmed, lower-cased input.
var greetings = map[string]struct{}{
	"hi":                     {},
	"hello":                  {},
	"hey":                    {},
	"who are you":            {},
	"who are you?":           {},
	"tell me about yourself": {},
}

// gibberishMaxLen is the longest input still considered for the gibberish
// rule.
const gibberishMaxLen = 8

var monthAbbrevRe = regexp.MustCompile(`jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`)

// ClassifyInput triages raw text so trivial input never reaches the full
// pipeline. Rules apply in order:
//   - blank input is InputEmpty;
//   - an exact greeting is InputGreeting;
//   - a short, purely alphabetic word with no month abbreviation in it is
//     InputGibberish;
//   - anything else is InputPossibleClanQuery.
func ClassifyInput(text string) InputKind {
	t := strings.ToLower(strings.TrimSpace(text))

	if t == "" {
		return InputEmpty
	}

	if _, ok := greetings[t]; ok {
		return InputGreeting
	}

	if utf8.RuneCountInString(t) <= gibberishMaxLen && isAlpha(t) && !monthAbbrevRe.MatchString(t) {
		return InputGibberish
	}

	return InputPossibleClanQuery
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
