// Package resolver is the inference step of the query pipeline: it reads the
// user's text against one loaded dataset and decides exactly one operation.
//
// Resolution is a fixed sequence of rules and the first rule that applies
// wins. Failures are results too (the ERROR_* kinds), so a caller always gets
// something to render.
package resolver

import (
	"errors"
	"math"
	"slices"
	"sort"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

// Resolve maps text to a single operation over records of domain d. It
// returns nil when records is empty, or when a ranking finds no recorded
// values at all.
func Resolve(text string, d clan.Domain, records []clan.Record) Result {
	if len(records) == 0 {
		return nil
	}

	q := parseQuery(text)
	metric, hasMetric := DetectMetric(text)
	player, hasPlayer := detectPlayer(q.folded, records)

	if hasMetric {
		if !d.Allows(string(metric)) {
			return FieldNotSupported{Field: string(metric), Allowed: d.AllowedFields()}
		}
		if !numericColumn(records, metric) {
			return UnsupportedMetric{Allowed: clan.MetricNames()}
		}
	}

	if hasPlayer && hasMetric {
		v, _ := player.Int(string(metric))
		return PlayerMetric{Player: player.Name(), Metric: metric, Value: v}
	}

	if q.has("status") && !d.HasStatus() {
		return FieldNotSupported{Field: clan.StatusField, Allowed: d.AllowedFields()}
	}

	if q.has("most") && !hasMetric {
		return UnsupportedMetric{Allowed: clan.MetricNames()}
	}

	if q.has("list") {
		return ListNames{Domain: d, Names: names(records)}
	}

	if hasMetric && q.has(" of ") && !hasPlayer {
		return PlayerNotFound{Players: names(records)}
	}

	if q.has("compare") {
		return compare(q, d, records)
	}

	if hasMetric && q.total {
		return total(metric, records)
	}

	if hasMetric && q.average {
		return average(metric, records)
	}

	if hasMetric {
		return rank(q, metric, records)
	}

	if q.membership && hasPlayer {
		return membership(player.Name(), d, records)
	}

	if !hasPlayer && (q.has("status") || q.has("display") || (q.has("of") && hasMetric)) {
		return PlayerNotFound{Players: names(records)}
	}

	if d.HasStatus() && q.has("status") && hasPlayer {
		return PlayerStatus{Player: player.Name(), Status: player[clan.StatusField]}
	}

	if hasPlayer && (q.has("display") || q.has("show")) {
		return fullData(player)
	}

	return UnclearOperation{}
}

// numericColumn reports whether every recorded value of metric coerces to an
// integer. It stops at the first row that does not.
func numericColumn(records []clan.Record, metric clan.Metric) bool {
	for _, r := range records {
		if _, err := r.Int(string(metric)); err != nil && !errors.Is(err, clan.ErrBlank) {
			return false
		}
	}
	return true
}

type entry struct {
	name  string
	value int
}

// column collects the coercible values of metric in dataset order.
func column(records []clan.Record, metric clan.Metric, nonZeroOnly bool) []entry {
	var out []entry
	for _, r := range records {
		v, err := r.Int(string(metric))
		if err != nil {
			continue
		}
		if nonZeroOnly && v == 0 {
			continue
		}
		out = append(out, entry{name: r.Name(), value: v})
	}
	return out
}

func compare(q query, d clan.Domain, records []clan.Record) Result {
	pair, ok := detectTwoPlayers(q.folded, records)
	if !ok {
		return ComparePlayersNotFound{Players: names(records)}
	}

	res := Compare{Players: [2]string{pair[0].Name(), pair[1].Name()}}
	for _, m := range d.Metrics() {
		v1, err1 := pair[0].Int(string(m))
		v2, err2 := pair[1].Int(string(m))
		if err1 != nil || err2 != nil {
			continue
		}
		res.Metrics = append(res.Metrics, MetricPair{Metric: m, Values: [2]int{v1, v2}})
	}
	if d.HasStatus() {
		res.Status = &[2]any{pair[0][clan.StatusField], pair[1][clan.StatusField]}
	}
	return res
}

func total(metric clan.Metric, records []clan.Record) Result {
	values := column(records, metric, false)
	if len(values) == 0 {
		return NoDataForTotal{Metric: metric}
	}
	sum := 0
	for _, e := range values {
		sum += e.value
	}
	return Total{Metric: metric, Total: sum, Count: len(values)}
}

func average(metric clan.Metric, records []clan.Record) Result {
	values := column(records, metric, false)
	if len(values) == 0 {
		return NoDataForAverage{Metric: metric}
	}
	sum := 0
	for _, e := range values {
		sum += e.value
	}
	avg := float64(sum) / float64(len(values))
	return Average{Metric: metric, Average: math.Round(avg*100) / 100, Count: len(values)}
}

func rank(q query, metric clan.Metric, records []clan.Record) Result {
	values := column(records, metric, q.nonZeroOnly)
	if len(values) == 0 {
		if q.nonZeroOnly {
			return NoNonZeroValues{Metric: metric}
		}
		return nil
	}

	if q.groupBy && q.topN == 0 {
		return GroupBy{Metric: metric, Groups: groupByValue(values, distinct(values, false))}
	}

	// Rankings run highest-first unless the text asks for the low end.
	order := distinct(values, !q.isLowest)

	if q.topN > 0 {
		selected := order[:min(q.topN, len(order))]
		return TopN{
			Metric: metric,
			Lowest: q.isLowest,
			Limit:  q.topN,
			Groups: groupByValue(values, selected),
		}
	}

	best := groupByValue(values, order[:1])[0]
	return Extreme{Metric: metric, Lowest: q.isLowest, Value: best.Value, Names: best.Names}
}

// distinct returns the distinct values, ascending or descending.
func distinct(values []entry, descending bool) []int {
	seen := make(map[int]bool, len(values))
	var out []int
	for _, e := range values {
		if !seen[e.value] {
			seen[e.value] = true
			out = append(out, e.value)
		}
	}
	sort.Ints(out)
	if descending {
		slices.Reverse(out)
	}
	return out
}

// groupByValue builds one tie-group per value in keys, in keys order.
func groupByValue(values []entry, keys []int) []ValueGroup {
	idx := make(map[int]int, len(keys))
	groups := make([]ValueGroup, len(keys))
	for i, k := range keys {
		idx[k] = i
		groups[i].Value = k
	}
	for _, e := range values {
		if i, ok := idx[e.value]; ok {
			groups[i].Names = append(groups[i].Names, e.name)
		}
	}
	return groups
}

func membership(player string, d clan.Domain, records []clan.Record) Result {
	exists := slices.ContainsFunc(records, func(r clan.Record) bool { return r.Name() == player })
	return Membership{Player: player, Domain: d, Exists: exists}
}

func fullData(r clan.Record) Result {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: r[k]})
	}
	return PlayerFullData{Player: r.Name(), Fields: fields}
}
