package chat

import (
	"github.com/bdobrica/karsb/internal/karsb/clan"
	"github.com/bdobrica/karsb/internal/karsb/resolver"
)

// glossaryOrder is the lookup order for "what does <metric> mean"; a question
// naming several metrics is answered for the first listed here.
var glossaryOrder = []clan.Metric{
	clan.WarAttack,
	clan.ClanScore,
	clan.ClanGamesMaxed,
	clan.ClanGames,
	clan.ClanCapital,
}

var glossary = map[clan.Metric]string{
	clan.WarAttack:      "Total war attacks performed by a player in the given month.",
	clan.ClanScore:      "Overall contribution score representing player performance.",
	clan.ClanGamesMaxed: "Whether the player fully completed Clan Games.",
	clan.ClanGames:      "Points contributed by the player in Clan Games.",
	clan.ClanCapital:    "Contribution made by the player to Clan Capital raids.",
}

// suggestionTemplates maps a result kind to follow-up questions; %s is the
// readable period.
var suggestionTemplates = map[resolver.Kind][3]string{
	resolver.KindPlayerMetric: {
		"display data of this player in %s",
		"compare this player vs another in %s",
		"what is the average clanscore in %s",
	},
	resolver.KindMostOfMetric: {
		"top 5 clanscore in %s",
		"lowest non-zero warattack in %s",
		"group clanscore in %s",
	},
	resolver.KindLeastOfMetric: {
		"top 5 clanscore in %s",
		"lowest non-zero warattack in %s",
		"group clanscore in %s",
	},
	resolver.KindTopNMetric: {
		"top 3 lowest clanscore in %s",
		"group warattack in %s",
		"what is the average warattack in %s",
	},
	resolver.KindGroupByValue: {
		"top 5 warattack in %s",
		"lowest non-zero warattack in %s",
		"total warattack in %s",
	},
	resolver.KindComparePlayers: {
		"what is the average clanscore in %s",
		"top 5 clanscore in %s",
		"display data of one of these players in %s",
	},
	resolver.KindAverageMetric: {
		"top 5 clanscore in %s",
		"group clanscore in %s",
		"compare two players in %s",
	},
	resolver.KindTotalMetric: {
		"top 5 clanscore in %s",
		"group clanscore in %s",
		"compare two players in %s",
	},
	resolver.KindMembershipCheck: {
		"display data of this player in %s",
		"is this player active in %s",
		"compare this player vs another in %s",
	},
}

var defaultSuggestions = [3]string{
	"list all names in %s",
	"top 5 clanscore in %s",
	"what is the average warattack in %s",
}
