package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdobrica/karsb/internal/karsb/app"
	"github.com/bdobrica/karsb/internal/karsb/chat"
	"github.com/bdobrica/karsb/internal/karsb/dataset"
)

const membersApr2025 = `[
	{"name": "kyaw_ein", "warattack": 73, "clanscore": 1200, "status": "Elder"},
	{"name": "Chief", "warattack": 40, "clanscore": 2100, "status": "Leader"}
]`

func newDataServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Clan Members/JSON/APR_2025.json" {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodGet {
			w.Write([]byte(membersApr2025))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, rateLimit int) *app.App {
	t.Helper()
	srv := newDataServer(t)

	ds := dataset.DefaultConfig()
	ds.BaseURL = srv.URL
	ds.HTTPClient = srv.Client()

	a, err := app.New(&app.Config{
		Dataset:   ds,
		DBPath:    filepath.Join(t.TempDir(), "karsb.db"),
		RateLimit: rateLimit,
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(a.Stop)
	return a
}

func TestApp_Ask(t *testing.T) {
	a := newApp(t, 10)
	ctx := context.Background()

	resp, err := a.Ask(ctx, "@alice:example.org", app.ChannelCLI, "who had most warattack in APR 2025")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(resp.Reply, "the highest warattack was 73, achieved by: kyaw_ein.") {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Source == nil || !strings.HasSuffix(*resp.Source, "/Clan%20Members/JSON/APR_2025.json") {
		t.Errorf("source = %v", resp.Source)
	}

	if _, err := a.Ask(ctx, "@alice:example.org", app.ChannelCLI, "hello"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	st := a.Status(ctx)
	if st.QueriesAnswered != 2 || st.QueriesRecorded != 2 {
		t.Errorf("status answered=%d recorded=%d, want 2/2", st.QueriesAnswered, st.QueriesRecorded)
	}
	if !st.AuditLog || st.Matrix {
		t.Errorf("status flags = audit %v matrix %v", st.AuditLog, st.Matrix)
	}
	if st.Cache.ContentEntries != 1 {
		t.Errorf("cache content entries = %d, want 1", st.Cache.ContentEntries)
	}
}

func TestApp_AskRateLimited(t *testing.T) {
	a := newApp(t, 1)
	ctx := context.Background()

	if _, err := a.Ask(ctx, "10.0.0.1", app.ChannelHTTP, "hello"); err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	resp, err := a.Ask(ctx, "10.0.0.1", app.ChannelHTTP, "hello")
	if !errors.Is(err, app.ErrRateLimited) {
		t.Fatalf("second Ask err = %v, want ErrRateLimited", err)
	}
	if resp.Reply == "" || resp.Suggestions == nil {
		t.Errorf("rate-limited response should still be well formed: %+v", resp)
	}

	if _, err := a.Ask(ctx, "10.0.0.2", app.ChannelHTTP, "hello"); err != nil {
		t.Errorf("other sender should not be limited: %v", err)
	}
}

func TestFormatReply(t *testing.T) {
	src := "https://example.org/APR_2025.json"
	got := app.FormatReply(chat.Response{
		Reply:       "In APR 2025, the total clanscore was 3300.",
		Source:      &src,
		Suggestions: []string{"a", "b"},
	})
	want := "In APR 2025, the total clanscore was 3300.\n\nSource: https://example.org/APR_2025.json\n\n**Try asking:**\n• a\n• b"
	if got != want {
		t.Errorf("FormatReply = %q, want %q", got, want)
	}

	if got := app.FormatReply(chat.Response{Reply: "Hi", Suggestions: []string{}}); got != "Hi" {
		t.Errorf("FormatReply(static) = %q", got)
	}
}
