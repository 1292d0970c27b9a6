package nlp

import (
	"regexp"
	"strings"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

var looseMonthRe = regexp.MustCompile(`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*(\d{2,4})`)

// SuggestMonth guesses the period meant by informal input such as "apr25",
// "apr 25" or "aprl 2025". Two-digit years are read as 20xx. The suggestion is
// returned in display form, e.g. "APR 2025".
func SuggestMonth(text string) (string, bool) {
	m := looseMonthRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	month, _ := clan.MonthFromCode(m[1])
	year := m[2]
	if len(year) == 2 {
		year = "20" + year
	}
	return month.Code() + " " + year, true
}

// SuggestPlayer returns the single player whose name starts with or contains
// token, compared case-insensitively. No suggestion is made when zero or
// several players match.
func SuggestPlayer(token string, players []string) (string, bool) {
	t := clan.Fold(token)
	if t == "" {
		return "", false
	}

	var matches []string
	for _, p := range players {
		name := clan.Fold(p)
		if name == "" {
			continue
		}
		if strings.HasPrefix(name, t) || strings.Contains(name, t) {
			matches = append(matches, p)
		}
	}

	if len(matches) != 1 {
		return "", false
	}
	return matches[0], true
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// queryWords are tokens that belong to the question rather than to a player
// name, so they never seed a player suggestion.
var queryWords = map[string]struct{}{
	"all": {}, "and": {}, "average": {}, "avg": {}, "between": {}, "clan": {},
	"compare": {}, "data": {}, "did": {}, "display": {}, "for": {}, "former": {},
	"from": {}, "group": {}, "had": {}, "has": {}, "highest": {}, "how": {},
	"least": {}, "list": {}, "lowest": {}, "mean": {}, "member": {}, "members": {},
	"min": {}, "minimum": {}, "most": {}, "much": {}, "names": {}, "non": {},
	"player": {}, "players": {}, "show": {}, "status": {}, "sum": {}, "the": {},
	"top": {}, "total": {}, "was": {}, "what": {}, "who": {}, "with": {}, "zero": {},
	"warattack": {}, "clancapital": {}, "clangames": {}, "clangamesmaxed": {}, "clanscore": {},
	"contributors": {}, "this": {}, "that": {},
}

// SuggestPlayerInText runs SuggestPlayer over each candidate token of text:
// at least three characters, not a digit run, month or query keyword. Players
// already named in full are not suggested. A suggestion is made only when
// every remaining match points at the same player.
func SuggestPlayerInText(text string, players []string) (string, bool) {
	folded := clan.Fold(text)
	var suggestion string
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if !candidateToken(tok) {
			continue
		}
		p, ok := SuggestPlayer(tok, players)
		if !ok || strings.Contains(folded, clan.Fold(p)) {
			continue
		}
		if suggestion != "" && p != suggestion {
			return "", false
		}
		suggestion = p
	}
	return suggestion, suggestion != ""
}

func candidateToken(tok string) bool {
	if len([]rune(tok)) < 3 || isDigits(tok) {
		return false
	}
	if _, ok := monthWords[tok]; ok {
		return false
	}
	_, ok := queryWords[tok]
	return !ok
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
