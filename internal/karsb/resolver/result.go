package resolver

import "github.com/bdobrica/karsb/internal/karsb/clan"

// Kind tags an operation result.
type Kind string

const (
	KindPlayerMetric    Kind = "PLAYER_METRIC"
	KindPlayerStatus    Kind = "PLAYER_STATUS"
	KindPlayerFullData  Kind = "PLAYER_FULL_DATA"
	KindMostOfMetric    Kind = "MOST_OF_METRIC"
	KindLeastOfMetric   Kind = "LEAST_OF_METRIC"
	KindTopNMetric      Kind = "TOP_N_METRIC"
	KindGroupByValue    Kind = "GROUP_BY_VALUE"
	KindTotalMetric     Kind = "TOTAL_METRIC"
	KindAverageMetric   Kind = "AVERAGE_METRIC"
	KindComparePlayers  Kind = "COMPARE_PLAYERS"
	KindMembershipCheck Kind = "PLAYER_MEMBERSHIP_CHECK"
	KindListNames       Kind = "LIST_NAMES"

	KindUnsupportedMetric      Kind = "ERROR_UNSUPPORTED_METRIC"
	KindFieldNotSupported      Kind = "ERROR_FIELD_NOT_SUPPORTED"
	KindPlayerNotFound         Kind = "ERROR_PLAYER_NOT_FOUND"
	KindNoDataForTotal         Kind = "ERROR_NO_DATA_FOR_TOTAL"
	KindNoDataForAverage       Kind = "ERROR_NO_DATA_FOR_AVERAGE"
	KindNoNonZeroValues        Kind = "ERROR_NO_NON_ZERO_VALUES"
	KindComparePlayersNotFound Kind = "ERROR_COMPARE_PLAYERS_NOT_FOUND"
	KindUnclearOperation       Kind = "ERROR_UNCLEAR_OPERATION"
)

// IsError reports whether k is one of the ERROR_* kinds.
func (k Kind) IsError() bool {
	return len(k) > 6 && k[:6] == "ERROR_"
}

// Result is the outcome of resolving one query. The set of implementations is
// closed; switch on the concrete type.
type Result interface {
	Kind() Kind
	sealed()
}

// ValueGroup is a tie-group: every player sharing one metric value, in
// dataset order.
type ValueGroup struct {
	Value int
	Names []string
}

// Field is one key/value pair of a raw record.
type Field struct {
	Key   string
	Value any
}

// MetricPair holds one metric's values for the two compared players.
type MetricPair struct {
	Metric clan.Metric
	Values [2]int
}

type PlayerMetric struct {
	Player string
	Metric clan.Metric
	Value  int
}

// PlayerStatus carries the raw status value, which may be nil.
type PlayerStatus struct {
	Player string
	Status any
}

// PlayerFullData lists every field of the player's record sorted by key.
type PlayerFullData struct {
	Player string
	Fields []Field
}

// Extreme is the single highest (or lowest) distinct value and all players
// tied at it.
type Extreme struct {
	Metric clan.Metric
	Lowest bool
	Value  int
	Names  []string
}

// TopN holds Limit distinct values, or fewer when the data has fewer, ordered
// from best to worst in the requested direction.
type TopN struct {
	Metric clan.Metric
	Lowest bool
	Limit  int
	Groups []ValueGroup
}

// GroupBy partitions players by exact value, ascending.
type GroupBy struct {
	Metric clan.Metric
	Groups []ValueGroup
}

type Total struct {
	Metric clan.Metric
	Total  int
	Count  int
}

// Average is rounded to two decimal places.
type Average struct {
	Metric  clan.Metric
	Average float64
	Count   int
}

// Compare covers every numeric metric of the domain that both players carry.
// Status is set only for domains that record it.
type Compare struct {
	Players [2]string
	Metrics []MetricPair
	Status  *[2]any
}

type Membership struct {
	Player string
	Domain clan.Domain
	Exists bool
}

type ListNames struct {
	Domain clan.Domain
	Names  []string
}

type FieldNotSupported struct {
	Field   string
	Allowed []string
}

type UnsupportedMetric struct {
	Allowed []string
}

type PlayerNotFound struct {
	Players []string
}

type NoDataForTotal struct{ Metric clan.Metric }

type NoDataForAverage struct{ Metric clan.Metric }

type NoNonZeroValues struct{ Metric clan.Metric }

type ComparePlayersNotFound struct {
	Players []string
}

type UnclearOperation struct{}

func (PlayerMetric) Kind() Kind   { return KindPlayerMetric }
func (PlayerStatus) Kind() Kind   { return KindPlayerStatus }
func (PlayerFullData) Kind() Kind { return KindPlayerFullData }
func (e Extreme) Kind() Kind {
	if e.Lowest {
		return KindLeastOfMetric
	}
	return KindMostOfMetric
}
func (TopN) Kind() Kind                   { return KindTopNMetric }
func (GroupBy) Kind() Kind                { return KindGroupByValue }
func (Total) Kind() Kind                  { return KindTotalMetric }
func (Average) Kind() Kind                { return KindAverageMetric }
func (Compare) Kind() Kind                { return KindComparePlayers }
func (Membership) Kind() Kind             { return KindMembershipCheck }
func (ListNames) Kind() Kind              { return KindListNames }
func (FieldNotSupported) Kind() Kind      { return KindFieldNotSupported }
func (UnsupportedMetric) Kind() Kind      { return KindUnsupportedMetric }
func (PlayerNotFound) Kind() Kind         { return KindPlayerNotFound }
func (NoDataForTotal) Kind() Kind         { return KindNoDataForTotal }
func (NoDataForAverage) Kind() Kind       { return KindNoDataForAverage }
func (NoNonZeroValues) Kind() Kind        { return KindNoNonZeroValues }
func (ComparePlayersNotFound) Kind() Kind { return KindComparePlayersNotFound }
func (UnclearOperation) Kind() Kind       { return KindUnclearOperation }

func (PlayerMetric) sealed()           {}
func (PlayerStatus) sealed()           {}
func (PlayerFullData) sealed()         {}
func (Extreme) sealed()                {}
func (TopN) sealed()                   {}
func (GroupBy) sealed()                {}
func (Total) sealed()                  {}
func (Average) sealed()                {}
func (Compare) sealed()                {}
func (Membership) sealed()             {}
func (ListNames) sealed()              {}
func (FieldNotSupported) sealed()      {}
func (UnsupportedMetric) sealed()      {}
func (PlayerNotFound) sealed()         {}
func (NoDataForTotal) sealed()         {}
func (NoDataForAverage) sealed()       {}
func (NoNonZeroValues) sealed()        {}
func (ComparePlayersNotFound) sealed() {}
func (UnclearOperation) sealed()       {}
