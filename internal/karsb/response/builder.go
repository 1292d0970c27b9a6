// Package response renders resolver results as chat text. It formats only;
// every number it prints was computed by the resolver.
package response

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bdobrica/karsb/internal/karsb/clan"
	"github.com/bdobrica/karsb/internal/karsb/resolver"
)

// Unavailable is the reply for a nil result.
const Unavailable = "I could not understand the request or the data is unavailable."

const unclear = `I could not understand the requested operation.
Try questions like:
- list all names in APR 2025
- top 5 warattack in APR 2025
- lowest non-zero clanscore in APR 2025
- group warattack in APR 2025`

var membershipLabels = map[clan.Domain]string{
	clan.ClanMembers:       "a clan member",
	clan.FormerClanMembers: "a former member",
	clan.TopContributors:   "in top contributors",
}

// Build returns the reply text for r over period p.
func Build(r resolver.Result, p clan.Period) string {
	if r == nil {
		return Unavailable
	}
	m := p.Readable()

	switch v := r.(type) {
	case resolver.ListNames:
		names := safeNames(v.Names)
		if len(names) == 0 {
			return fmt.Sprintf("No data found for %s.", m)
		}
		return listTitle(v.Domain, m) + ":\n" + strings.Join(names, ", ")

	case resolver.Total:
		return fmt.Sprintf("The total %s done by the clan in %s was %d, across %d players.", v.Metric, m, v.Total, v.Count)

	case resolver.Extreme:
		if v.Lowest {
			return fmt.Sprintf("In %s, the lowest %s was %d, recorded by: %s.", m, v.Metric, v.Value, joinNames(v.Names))
		}
		return fmt.Sprintf("In %s, the highest %s was %d, achieved by: %s.", m, v.Metric, v.Value, joinNames(v.Names))

	case resolver.Compare:
		p1, p2 := v.Players[0], v.Players[1]
		lines := []string{fmt.Sprintf("Comparison for %s vs %s in %s:", p1, p2, m)}
		for _, mp := range v.Metrics {
			lines = append(lines, fmt.Sprintf("%-14s: %s = %d, %s = %d", mp.Metric, p1, mp.Values[0], p2, mp.Values[1]))
		}
		if v.Status != nil {
			lines = append(lines, fmt.Sprintf("status         : %s = %s, %s = %s", p1, Value(v.Status[0]), p2, Value(v.Status[1])))
		}
		return strings.Join(lines, "\n")

	case resolver.TopN:
		mode := "highest"
		if v.Lowest {
			mode = "lowest"
		}
		lines := []string{fmt.Sprintf("Top %d %s %s in %s:", v.Limit, mode, v.Metric, m)}
		return strings.Join(append(lines, groupLines(v.Groups)...), "\n")

	case resolver.GroupBy:
		lines := []string{fmt.Sprintf("%s grouped by value in %s:", capitalize(string(v.Metric)), m)}
		return strings.Join(append(lines, groupLines(v.Groups)...), "\n")

	case resolver.PlayerStatus:
		return fmt.Sprintf("%s's status in %s was %s.", v.Player, m, Value(v.Status))

	case resolver.PlayerMetric:
		return fmt.Sprintf("%s's %s in %s was %d.", v.Player, v.Metric, m, v.Value)

	case resolver.PlayerFullData:
		lines := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			lines = append(lines, fmt.Sprintf("%-14s: %s", f.Key, Value(f.Value)))
		}
		return strings.Join(lines, "\n")

	case resolver.Average:
		return fmt.Sprintf("The average %s in %s was %s based on %d players.", v.Metric, m, Float(v.Average), v.Count)

	case resolver.Membership:
		label, ok := membershipLabels[v.Domain]
		if !ok {
			label = "present"
		}
		if v.Exists {
			return fmt.Sprintf("Yes, %s was %s in %s.", v.Player, label, m)
		}
		return fmt.Sprintf("No, %s was not %s in %s.", v.Player, label, m)

	case resolver.UnsupportedMetric:
		return fmt.Sprintf("I could not identify the metric you requested. Supported metrics are: %s.", strings.Join(v.Allowed, ", "))

	case resolver.FieldNotSupported:
		return fmt.Sprintf("The field '%s' is not available for this dataset. Supported fields are: %s.", v.Field, strings.Join(v.Allowed, ", "))

	case resolver.PlayerNotFound:
		return fmt.Sprintf("I could not find that player for this month. Available players are: %s.", joinNames(v.Players))

	case resolver.NoNonZeroValues:
		return fmt.Sprintf("All values for %s are zero in %s. No non-zero data is available.", v.Metric, m)

	case resolver.UnclearOperation:
		return unclear

	case resolver.ComparePlayersNotFound:
		return fmt.Sprintf("I could not find exactly two players to compare for this month.\nAvailable players are: %s.", joinNames(v.Players))

	case resolver.NoDataForAverage:
		return fmt.Sprintf("No valid data available to calculate the average for %s in %s.", v.Metric, m)

	case resolver.NoDataForTotal:
		return fmt.Sprintf("No valid data available to calculate the total for %s in %s.", v.Metric, m)
	}

	return "I could not process the request."
}

func listTitle(d clan.Domain, m string) string {
	switch d {
	case clan.FormerClanMembers:
		return "Former clan members for " + m
	case clan.TopContributors:
		return "Top clan contributors for " + m
	default:
		return "Clan members for " + m
	}
}

func groupLines(groups []resolver.ValueGroup) []string {
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, fmt.Sprintf("%d: %s", g.Value, joinNames(g.Names)))
	}
	return lines
}

// safeNames drops blank names.
func safeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return out
}

func joinNames(names []string) string {
	return strings.Join(safeNames(names), ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Value renders a raw record value. Missing values print as "n/a".
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return "n/a"
	case string:
		if x == "" {
			return "n/a"
		}
		return x
	case json.Number:
		return x.String()
	case float64:
		return Float(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}

// Float prints f in its shortest form, always with a fractional part:
// 2.33, 5.0, 2666.67.
func Float(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
