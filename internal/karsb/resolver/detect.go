package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

// MaxTopN bounds "top N" requests.
const MaxTopN = 50

var topNRe = regexp.MustCompile(`\btop\s+(\d{1,2})\b`)

// query holds the lower-cased text and the intent flags derived from it.
type query struct {
	text        string
	folded      string
	isLowest    bool
	isHighest   bool
	nonZeroOnly bool
	topN        int
	groupBy     bool
	average     bool
	total       bool
	membership  bool
}

func parseQuery(text string) query {
	t := strings.ToLower(text)
	q := query{
		text:        t,
		folded:      clan.Fold(text),
		isLowest:    containsAny(t, "lowest", "least", "minimum", "min"),
		nonZeroOnly: containsAny(t, "non-zero", "non zero"),
		topN:        detectTopN(t),
		groupBy:     strings.Contains(t, "group"),
		average:     containsAny(t, "average", "avg", "mean"),
		total:       containsAny(t, "total", "sum"),
		membership:  containsAny(t, "is", "a member", "a former", "in top"),
	}
	q.isHighest = containsAny(t, "top", "most") && !q.isLowest
	return q
}

func (q query) has(s string) bool {
	return strings.Contains(q.text, s)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DetectMetric returns the first metric, in clan.Metrics order, whose name
// occurs in text. The scan order is fixed, so a text naming two metrics
// always yields the same one regardless of where each appears.
func DetectMetric(text string) (clan.Metric, bool) {
	t := strings.ToLower(text)
	for _, m := range clan.Metrics {
		if strings.Contains(t, string(m)) {
			return m, true
		}
	}
	return "", false
}

func detectTopN(t string) int {
	m := topNRe.FindStringSubmatch(t)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > MaxTopN {
		return 0
	}
	return n
}

// detectPlayer returns the first record whose non-blank name occurs in the
// folded query text.
func detectPlayer(folded string, records []clan.Record) (clan.Record, bool) {
	for _, r := range records {
		name := clan.Fold(r.Name())
		if name != "" && strings.Contains(folded, name) {
			return r, true
		}
	}
	return nil, false
}

// detectTwoPlayers returns the matched names when exactly two distinct
// display names occur in the text, in dataset order.
func detectTwoPlayers(folded string, records []clan.Record) ([2]clan.Record, bool) {
	var found []clan.Record
	seen := make(map[string]bool)
	for _, r := range records {
		name := r.Name()
		key := clan.Fold(name)
		if key == "" || seen[name] || !strings.Contains(folded, key) {
			continue
		}
		seen[name] = true
		found = append(found, r)
	}
	if len(found) != 2 {
		return [2]clan.Record{}, false
	}
	return [2]clan.Record{found[0], found[1]}, true
}

func names(records []clan.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name())
	}
	return out
}
