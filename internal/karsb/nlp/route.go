package nlp

import (
	"strings"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

// RouteDomain picks the dataset domain for a query from its keywords and the
// shape of its period. Precedence:
//  1. "former" or "ex member" with a single month → FORMER_CLAN_MEMBERS
//  2. any month range → CLAN_MONTHLY_ANALYSIS
//  3. "clanscore" with "top" or "most" for a single month → TOP_CLAN_CONTRIBUTORS
//  4. any other single month → CLAN_MEMBERS
//
// ok is false when period is the zero Period.
func RouteDomain(text string, period clan.Period) (domain clan.Domain, ok bool) {
	t := strings.ToLower(text)

	switch {
	case period.Kind == clan.Single && (strings.Contains(t, "former") || strings.Contains(t, "ex member")):
		return clan.FormerClanMembers, true
	case period.Kind == clan.Range:
		return clan.MonthlyAnalysis, true
	case period.Kind == clan.Single && strings.Contains(t, "clanscore") &&
		(strings.Contains(t, "top") || strings.Contains(t, "most")):
		return clan.TopContributors, true
	case period.Kind == clan.Single:
		return clan.ClanMembers, true
	}
	return "", false
}
