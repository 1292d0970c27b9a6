// Package clan defines the clan data model shared by the query pipeline:
// dataset domains, performance metrics, reporting periods and raw records.
package clan

import "sort"

// Domain identifies one of the hosted dataset categories.
type Domain string

const (
	// ClanMembers holds monthly data for active clan members.
	ClanMembers Domain = "CLAN_MEMBERS"
	// FormerClanMembers holds monthly data for players who left the clan.
	FormerClanMembers Domain = "FORMER_CLAN_MEMBERS"
	// MonthlyAnalysis holds aggregated data over a month range.
	MonthlyAnalysis Domain = "CLAN_MONTHLY_ANALYSIS"
	// TopContributors holds the monthly top contributors by clanscore.
	TopContributors Domain = "TOP_CLAN_CONTRIBUTORS"
)

// Metric is one of the five numeric performance fields.
type Metric string

const (
	WarAttack      Metric = "warattack"
	ClanCapital    Metric = "clancapital"
	ClanGames      Metric = "clangames"
	ClanGamesMaxed Metric = "clangamesmaxed"
	ClanScore      Metric = "clanscore"
)

// Field names that are not metrics.
const (
	NameField   = "name"
	StatusField = "status"
)

// Metrics lists every supported metric in detection order. clangamesmaxed
// precedes clangames because the latter is a substring of the former.
var Metrics = []Metric{WarAttack, ClanCapital, ClanGamesMaxed, ClanGames, ClanScore}

var allMetrics = []Metric{WarAttack, ClanCapital, ClanGames, ClanGamesMaxed, ClanScore}

var domainMetrics = map[Domain][]Metric{
	ClanMembers:       allMetrics,
	FormerClanMembers: allMetrics,
	MonthlyAnalysis:   allMetrics,
	TopContributors:   {ClanScore},
}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	_, ok := domainMetrics[d]
	return ok
}

// Metrics returns the numeric metrics the domain carries.
func (d Domain) Metrics() []Metric {
	return domainMetrics[d]
}

// HasStatus reports whether records of the domain carry a status field.
func (d Domain) HasStatus() bool {
	return d == ClanMembers
}

// Allows reports whether field may be queried in this domain.
func (d Domain) Allows(field string) bool {
	if field == StatusField {
		return d.HasStatus()
	}
	for _, m := range domainMetrics[d] {
		if string(m) == field {
			return true
		}
	}
	return false
}

// AllowedFields returns the queryable fields of the domain, sorted.
func (d Domain) AllowedFields() []string {
	fields := make([]string, 0, len(domainMetrics[d])+1)
	for _, m := range domainMetrics[d] {
		fields = append(fields, string(m))
	}
	if d.HasStatus() {
		fields = append(fields, StatusField)
	}
	sort.Strings(fields)
	return fields
}

// MetricNames returns the names of all supported metrics, sorted.
func MetricNames() []string {
	names := make([]string, 0, len(allMetrics))
	for _, m := range allMetrics {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}
