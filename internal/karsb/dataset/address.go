package dataset

import (
	"fmt"
	"strings"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

// DefaultBaseURL is the raw-content root of the hosted clan data repository.
const DefaultBaseURL = "https://raw.githubusercontent.com/Lightning-President-9/ClanDataRepo/refs/heads/main"

// domainPaths are URL-escaped directory paths under the base URL.
var domainPaths = map[clan.Domain]string{
	clan.ClanMembers:       "Clan%20Members/JSON",
	clan.FormerClanMembers: "Former%20Clan%20Members/JSON",
	clan.MonthlyAnalysis:   "Clan%20Members/Monthly%20Analysis%20JSON",
	clan.TopContributors:   "Top%20Clan%20Contributors/JSON",
}

// Filename returns the file name a domain uses for period.
func Filename(d clan.Domain, p clan.Period) string {
	if d == clan.MonthlyAnalysis {
		return "data_" + p.String() + ".json"
	}
	return p.String() + ".json"
}

// BuildURL returns the address of the dataset for (d, p) under base.
func BuildURL(base string, d clan.Domain, p clan.Period) (string, error) {
	path, ok := domainPaths[d]
	if !ok {
		return "", fmt.Errorf("unknown domain %q", d)
	}
	if p.IsZero() {
		return "", fmt.Errorf("empty period for domain %s", d)
	}
	return strings.TrimRight(base, "/") + "/" + path + "/" + Filename(d, p), nil
}
