package clan_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/bdobrica/karsb/internal/karsb/clan"
)

func TestPeriod_String(t *testing.T) {
	tests := []struct {
		period clan.Period
		want   string
	}{
		{clan.SingleMonth(4, 2025), "APR_2025"},
		{clan.MonthRange(4, 5, 2025), "APR-MAY_2025"},
		{clan.MonthRange(12, 1, 2025), "DEC-JAN_2025"},
		{clan.Period{}, ""},
	}
	for _, tt := range tests {
		if got := tt.period.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPeriod_Readable(t *testing.T) {
	if got := clan.MonthRange(4, 5, 2025).Readable(); got != "APR-MAY 2025" {
		t.Errorf("Readable() = %q", got)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    clan.Period
		wantErr bool
	}{
		{in: "DEC_2025", want: clan.SingleMonth(12, 2025)},
		{in: "nov-dec_2025", want: clan.MonthRange(11, 12, 2025)},
		{in: "XYZ_2025", wantErr: true},
		{in: "APR 2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := clan.ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePeriod(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePeriod(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDomain_AllowedFields(t *testing.T) {
	tests := []struct {
		domain clan.Domain
		want   []string
	}{
		{clan.ClanMembers, []string{"clancapital", "clangames", "clangamesmaxed", "clanscore", "status", "warattack"}},
		{clan.FormerClanMembers, []string{"clancapital", "clangames", "clangamesmaxed", "clanscore", "warattack"}},
		{clan.TopContributors, []string{"clanscore"}},
	}
	for _, tt := range tests {
		if got := tt.domain.AllowedFields(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s.AllowedFields() = %v, want %v", tt.domain, got, tt.want)
		}
	}
	if clan.TopContributors.Allows("warattack") {
		t.Error("top contributors must not allow warattack")
	}
	if clan.MonthlyAnalysis.Allows("status") {
		t.Error("monthly analysis must not allow status")
	}
	if clan.Domain("BOGUS").Valid() {
		t.Error("unknown domain reported valid")
	}
}

func TestRecord_Int(t *testing.T) {
	row := clan.Record{
		"name":  "Chief",
		"num":   json.Number("42"),
		"float": json.Number("3.9"),
		"neg":   json.Number("-1"),
		"str":   " 12 ",
		"bad":   "abc",
		"null":  nil,
		"blank": "",
		"flag":  true,
		"list":  []any{1},
		"real":  7.0,
	}
	tests := []struct {
		field   string
		want    int
		wantErr error
	}{
		{"num", 42, nil},
		{"float", 3, nil},
		{"neg", -1, nil},
		{"str", 12, nil},
		{"flag", 1, nil},
		{"real", 7, nil},
		{"missing", 0, nil},
		{"null", 0, clan.ErrBlank},
		{"blank", 0, clan.ErrBlank},
		{"bad", 0, clan.ErrNotNumeric},
		{"list", 0, clan.ErrNotNumeric},
	}
	for _, tt := range tests {
		got, err := row.Int(tt.field)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Int(%q) err = %v, want %v", tt.field, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Int(%q) unexpected err: %v", tt.field, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.field, got, tt.want)
		}
	}
}

func TestFold(t *testing.T) {
	if clan.Fold("  KAI HiWaTaRi ") != clan.Fold("kai hiwatari") {
		t.Error("Fold must ignore case and surrounding whitespace")
	}
}
