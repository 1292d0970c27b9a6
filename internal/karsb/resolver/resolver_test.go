package resolver_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/bdobrica/karsb/internal/karsb/clan"
	"github.com/bdobrica/karsb/internal/karsb/resolver"
)

func n(v string) json.Number { return json.Number(v) }

func members() []clan.Record {
	return []clan.Record{
		{"name": "kyaw_ein", "warattack": n("73"), "clancapital": n("5000"), "clangames": n("1000"), "clangamesmaxed": n("0"), "clanscore": n("1200"), "status": "Elder"},
		{"name": "Chief", "warattack": n("40"), "clancapital": n("3000"), "clangames": n("4000"), "clangamesmaxed": n("1"), "clanscore": n("2100"), "status": "Leader"},
		{"name": "KAI HIWATARI", "warattack": n("40"), "clancapital": nil, "clangames": n("0"), "clangamesmaxed": n("0"), "clanscore": n("900"), "status": "Co-leader"},
		{"name": "KING SEENU", "warattack": n("12"), "clancapital": n("0"), "clangames": n("0"), "clangamesmaxed": n("0"), "clanscore": n("0"), "status": "Member"},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		domain clan.Domain
		want   resolver.Result
	}{
		{
			name:   "most with unique max",
			text:   "who had most warattack in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Extreme{Metric: clan.WarAttack, Value: 73, Names: []string{"kyaw_ein"}},
		},
		{
			name:   "lowest",
			text:   "lowest warattack in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Extreme{Metric: clan.WarAttack, Lowest: true, Value: 12, Names: []string{"KING SEENU"}},
		},
		{
			name:   "bare metric ranks highest",
			text:   "warattack in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Extreme{Metric: clan.WarAttack, Value: 73, Names: []string{"kyaw_ein"}},
		},
		{
			name:   "lowest non-zero",
			text:   "lowest non-zero clanscore in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Extreme{Metric: clan.ClanScore, Lowest: true, Value: 900, Names: []string{"KAI HIWATARI"}},
		},
		{
			name:   "top n keeps ties",
			text:   "top 2 warattack in APR 2025",
			domain: clan.ClanMembers,
			want: resolver.TopN{Metric: clan.WarAttack, Limit: 2, Groups: []resolver.ValueGroup{
				{Value: 73, Names: []string{"kyaw_ein"}},
				{Value: 40, Names: []string{"Chief", "KAI HIWATARI"}},
			}},
		},
		{
			name:   "group by ascending",
			text:   "group warattack in APR 2025",
			domain: clan.ClanMembers,
			want: resolver.GroupBy{Metric: clan.WarAttack, Groups: []resolver.ValueGroup{
				{Value: 12, Names: []string{"KING SEENU"}},
				{Value: 40, Names: []string{"Chief", "KAI HIWATARI"}},
				{Value: 73, Names: []string{"kyaw_ein"}},
			}},
		},
		{
			name:   "top n wins over group",
			text:   "group top 1 warattack in APR 2025",
			domain: clan.ClanMembers,
			want: resolver.TopN{Metric: clan.WarAttack, Limit: 1, Groups: []resolver.ValueGroup{
				{Value: 73, Names: []string{"kyaw_ein"}},
			}},
		},
		{
			name:   "total",
			text:   "total clanscore in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Total{Metric: clan.ClanScore, Total: 4200, Count: 4},
		},
		{
			name:   "metric of with no player",
			text:   "sum of clancapital in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.PlayerNotFound{Players: []string{"kyaw_ein", "Chief", "KAI HIWATARI", "KING SEENU"}},
		},
		{
			name:   "average skips blank values",
			text:   "average clancapital in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Average{Metric: clan.ClanCapital, Average: 2666.67, Count: 3},
		},
		{
			name:   "player metric",
			text:   "what was Chief's warattack in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.PlayerMetric{Player: "Chief", Metric: clan.WarAttack, Value: 40},
		},
		{
			name:   "player metric with blank value reads zero",
			text:   "kai hiwatari clancapital APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.PlayerMetric{Player: "KAI HIWATARI", Metric: clan.ClanCapital, Value: 0},
		},
		{
			name:   "metric not allowed in domain",
			text:   "most warattack in APR 2025",
			domain: clan.TopContributors,
			want:   resolver.FieldNotSupported{Field: "warattack", Allowed: []string{"clanscore"}},
		},
		{
			name:   "status outside clan members",
			text:   "total status in DEC 2024",
			domain: clan.FormerClanMembers,
			want: resolver.FieldNotSupported{Field: "status", Allowed: []string{
				"clancapital", "clangames", "clangamesmaxed", "clanscore", "warattack",
			}},
		},
		{
			name:   "most without metric",
			text:   "who has most trophies in APR 2025",
			domain: clan.ClanMembers,
			want: resolver.UnsupportedMetric{Allowed: []string{
				"clancapital", "clangames", "clangamesmaxed", "clanscore", "warattack",
			}},
		},
		{
			name:   "list names",
			text:   "list all names in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.ListNames{Domain: clan.ClanMembers, Names: []string{"kyaw_ein", "Chief", "KAI HIWATARI", "KING SEENU"}},
		},
		{
			name:   "metric of unknown player",
			text:   "warattack of bob in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.PlayerNotFound{Players: []string{"kyaw_ein", "Chief", "KAI HIWATARI", "KING SEENU"}},
		},
		{
			name:   "membership",
			text:   "is KAI HIWATARI a member in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.Membership{Player: "KAI HIWATARI", Domain: clan.ClanMembers, Exists: true},
		},
		{
			name:   "status of player",
			text:   "status of Chief in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.PlayerStatus{Player: "Chief", Status: "Leader"},
		},
		{
			name:   "status of unknown player",
			text:   "status of bob in APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.PlayerNotFound{Players: []string{"kyaw_ein", "Chief", "KAI HIWATARI", "KING SEENU"}},
		},
		{
			name:   "unclear",
			text:   "tell me about APR 2025",
			domain: clan.ClanMembers,
			want:   resolver.UnclearOperation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.text, tt.domain, members())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q)\n got: %#v\nwant: %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolve_EmptyRecords(t *testing.T) {
	if got := resolver.Resolve("top 5 warattack", clan.ClanMembers, nil); got != nil {
		t.Errorf("expected nil for empty dataset, got %#v", got)
	}
}

func TestResolve_TopNCountsDistinctValues(t *testing.T) {
	records := []clan.Record{
		{"name": "Zyx1", "clanscore": n("10")},
		{"name": "Qwv2", "clanscore": n("10")},
		{"name": "Jpf3", "clanscore": n("7")},
		{"name": "Hkd4", "clanscore": n("5")},
	}
	got := resolver.Resolve("top 2 highest clanscore in APR-MAY 2025", clan.MonthlyAnalysis, records)
	want := resolver.TopN{Metric: clan.ClanScore, Limit: 2, Groups: []resolver.ValueGroup{
		{Value: 10, Names: []string{"Zyx1", "Qwv2"}},
		{Value: 7, Names: []string{"Jpf3"}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	got = resolver.Resolve("top 2 lowest clanscore in APR-MAY 2025", clan.MonthlyAnalysis, records)
	want = resolver.TopN{Metric: clan.ClanScore, Lowest: true, Limit: 2, Groups: []resolver.ValueGroup{
		{Value: 5, Names: []string{"Hkd4"}},
		{Value: 7, Names: []string{"Jpf3"}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lowest: got %#v, want %#v", got, want)
	}
}

func TestResolve_TopNBounds(t *testing.T) {
	records := members()
	for _, text := range []string{"top 0 warattack", "top 51 warattack", "top 99 warattack"} {
		got := resolver.Resolve(text, clan.ClanMembers, records)
		if got.Kind() != resolver.KindMostOfMetric {
			t.Errorf("%q: out-of-range N should fall back to a single extreme, got %s", text, got.Kind())
		}
	}
	got := resolver.Resolve("top 50 warattack", clan.ClanMembers, records).(resolver.TopN)
	if got.Limit != 50 || len(got.Groups) != 3 {
		t.Errorf("top 50 = %+v", got)
	}
}

func TestResolve_Average(t *testing.T) {
	records := []clan.Record{
		{"name": "Zyx1", "warattack": n("1")},
		{"name": "Qwv2", "warattack": n("2")},
		{"name": "Jpf3", "warattack": n("4")},
	}
	got := resolver.Resolve("avg warattack in APR 2025", clan.ClanMembers, records)
	want := resolver.Average{Metric: clan.WarAttack, Average: 2.33, Count: 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestResolve_Compare(t *testing.T) {
	got := resolver.Resolve("compare Chief vs KAI HIWATARI in APR 2025", clan.ClanMembers, members())
	want := resolver.Compare{
		Players: [2]string{"Chief", "KAI HIWATARI"},
		Metrics: []resolver.MetricPair{
			{Metric: clan.WarAttack, Values: [2]int{40, 40}},
			{Metric: clan.ClanGames, Values: [2]int{4000, 0}},
			{Metric: clan.ClanGamesMaxed, Values: [2]int{1, 0}},
			{Metric: clan.ClanScore, Values: [2]int{2100, 900}},
		},
		Status: &[2]any{"Leader", "Co-leader"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	former := members()
	got = resolver.Resolve("compare chief and king seenu in DEC 2024", clan.FormerClanMembers, former)
	c, ok := got.(resolver.Compare)
	if !ok {
		t.Fatalf("expected Compare, got %#v", got)
	}
	if c.Status != nil {
		t.Error("status must only be compared for clan members")
	}
	if len(c.Metrics) != 5 {
		t.Errorf("expected all five metrics, got %d", len(c.Metrics))
	}
}

func TestResolve_CompareNeedsExactlyTwo(t *testing.T) {
	for _, text := range []string{
		"compare Chief in APR 2025",
		"compare Chief, KAI HIWATARI and KING SEENU in APR 2025",
		"compare Chief with chief in APR 2025",
	} {
		got := resolver.Resolve(text, clan.ClanMembers, members())
		if got.Kind() != resolver.KindComparePlayersNotFound {
			t.Errorf("%q: got %s, want %s", text, got.Kind(), resolver.KindComparePlayersNotFound)
		}
	}
}

func TestResolve_NonNumericColumn(t *testing.T) {
	records := members()
	records[3] = clan.Record{"name": "KING SEENU", "warattack": "lots"}
	got := resolver.Resolve("top 3 warattack in APR 2025", clan.ClanMembers, records)
	if got.Kind() != resolver.KindUnsupportedMetric {
		t.Fatalf("got %s, want %s", got.Kind(), resolver.KindUnsupportedMetric)
	}
}

func TestResolve_NoValues(t *testing.T) {
	blank := []clan.Record{
		{"name": "Zyx1", "clanscore": nil, "warattack": n("0")},
		{"name": "Qwv2", "clanscore": "", "warattack": n("0")},
	}
	tests := []struct {
		text string
		want resolver.Kind
	}{
		{"total clanscore in APR-MAY 2025", resolver.KindNoDataForTotal},
		{"average clanscore in APR-MAY 2025", resolver.KindNoDataForAverage},
		{"top non-zero warattack in APR-MAY 2025", resolver.KindNoNonZeroValues},
	}
	for _, tt := range tests {
		got := resolver.Resolve(tt.text, clan.MonthlyAnalysis, blank)
		if got == nil || got.Kind() != tt.want {
			t.Errorf("%q: got %v, want %s", tt.text, got, tt.want)
		}
	}

	if got := resolver.Resolve("most clanscore in APR-MAY 2025", clan.MonthlyAnalysis, blank); got != nil {
		t.Errorf("ranking with no recorded values should be nil, got %#v", got)
	}
}

func TestResolve_MetricDetectionOrder(t *testing.T) {
	tests := map[string]clan.Metric{
		"clangamesmaxed":             clan.ClanGamesMaxed,
		"clangames":                  clan.ClanGames,
		"clanscore and warattack":    clan.WarAttack,
		"clanscore then clancapital": clan.ClanCapital,
		"CLANSCORE":                  clan.ClanScore,
	}
	for text, want := range tests {
		got, ok := resolver.DetectMetric(text)
		if !ok || got != want {
			t.Errorf("DetectMetric(%q) = %s, %v; want %s", text, got, ok, want)
		}
	}
	if _, ok := resolver.DetectMetric("trophies"); ok {
		t.Error("no metric expected")
	}
}

func TestKind_IsError(t *testing.T) {
	if !resolver.KindUnclearOperation.IsError() || resolver.KindListNames.IsError() {
		t.Error("IsError misclassifies kinds")
	}
}
