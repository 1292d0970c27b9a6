package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bdobrica/karsb/internal/karsb/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "karsb.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_AppliesMigrations(t *testing.T) {
	s := newTestStore(t)

	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "karsb.db")

	s, err := store.New(path)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	ctx := context.Background()
	if err := s.RecordQuery(ctx, &store.QueryRecord{TraceID: "t_1", Sender: "@a:x", Channel: "cli", Text: "hi", Stage: "greeting"}); err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}
	s.Close()

	s, err = store.New(path)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	defer s.Close()

	n, err := s.CountQueries(ctx)
	if err != nil {
		t.Fatalf("CountQueries: %v", err)
	}
	if n != 1 {
		t.Errorf("CountQueries = %d after reopen, want 1", n)
	}
}

func TestQueryLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &store.QueryRecord{
		TraceID:   "t_a",
		Sender:    "@alice:example.org",
		Channel:   "matrix",
		Text:      "who had most warattack in APR 2025",
		Stage:     "answered",
		Kind:      "MOST",
		Domain:    "CLAN_MEMBERS",
		Period:    "APR_2025",
		Effective: "APR_2025",
		Source:    "https://example.org/CLAN_MEMBERS_APR_2025.json",
		Duration:  42 * time.Millisecond,
	}
	if err := s.RecordQuery(ctx, first); err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}
	if first.ID == 0 {
		t.Error("RecordQuery did not set ID")
	}
	if first.Timestamp.IsZero() {
		t.Error("RecordQuery did not set Timestamp")
	}

	second := &store.QueryRecord{TraceID: "t_b", Sender: "@bob:example.org", Channel: "http", Text: "hello", Stage: "greeting"}
	if err := s.RecordQuery(ctx, second); err != nil {
		t.Fatalf("RecordQuery: %v", err)
	}

	recent, err := s.RecentQueries(ctx, 10)
	if err != nil {
		t.Fatalf("RecentQueries: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentQueries returned %d rows, want 2", len(recent))
	}
	if recent[0].TraceID != "t_b" || recent[1].TraceID != "t_a" {
		t.Errorf("RecentQueries order = %s, %s; want newest first", recent[0].TraceID, recent[1].TraceID)
	}
	if recent[0].Kind != "" || recent[0].Source != "" {
		t.Errorf("optional columns should read back empty, got kind=%q source=%q", recent[0].Kind, recent[0].Source)
	}

	got := recent[1]
	if got.Domain != "CLAN_MEMBERS" || got.Period != "APR_2025" || got.Kind != "MOST" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Duration != 42*time.Millisecond {
		t.Errorf("Duration = %v, want 42ms", got.Duration)
	}

	limited, err := s.RecentQueries(ctx, 1)
	if err != nil {
		t.Fatalf("RecentQueries(1): %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("RecentQueries(1) returned %d rows", len(limited))
	}

	byTrace, err := s.QueriesByTrace(ctx, "t_a")
	if err != nil {
		t.Fatalf("QueriesByTrace: %v", err)
	}
	if len(byTrace) != 1 || byTrace[0].Text != first.Text {
		t.Errorf("QueriesByTrace(t_a) = %+v", byTrace)
	}

	none, err := s.QueriesByTrace(ctx, "t_missing")
	if err != nil {
		t.Fatalf("QueriesByTrace: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("QueriesByTrace(t_missing) returned %d rows", len(none))
	}
}

func TestSyncState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.LoadSyncValue(ctx, "@bot:x", "next_batch")
	if err != nil {
		t.Fatalf("LoadSyncValue: %v", err)
	}
	if v != "" {
		t.Errorf("unset value = %q, want empty", v)
	}

	for _, token := range []string{"s1", "s2"} {
		if err := s.SaveSyncValue(ctx, "@bot:x", "next_batch", token); err != nil {
			t.Fatalf("SaveSyncValue: %v", err)
		}
	}
	if err := s.SaveSyncValue(ctx, "@other:x", "next_batch", "o1"); err != nil {
		t.Fatalf("SaveSyncValue: %v", err)
	}

	v, err = s.LoadSyncValue(ctx, "@bot:x", "next_batch")
	if err != nil {
		t.Fatalf("LoadSyncValue: %v", err)
	}
	if v != "s2" {
		t.Errorf("next_batch = %q, want s2 (upsert)", v)
	}
}
