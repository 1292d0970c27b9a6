package matrix_test

import (
	"context"
	"testing"

	"maunium.net/go/mautrix/id"

	"github.com/bdobrica/karsb/internal/karsb/matrix"
)

type memState map[string]string

func (m memState) SaveSyncValue(_ context.Context, userID, key, value string) error {
	m[userID+"/"+key] = value
	return nil
}

func (m memState) LoadSyncValue(_ context.Context, userID, key string) (string, error) {
	return m[userID+"/"+key], nil
}

func TestSyncStore(t *testing.T) {
	state := memState{}
	s := matrix.NewSyncStore(state)
	ctx := context.Background()
	user := id.UserID("@karsb:example.org")

	if got, err := s.LoadNextBatch(ctx, user); err != nil || got != "" {
		t.Fatalf("LoadNextBatch on empty store = (%q, %v)", got, err)
	}

	if err := s.SaveNextBatch(ctx, user, "s42_1"); err != nil {
		t.Fatalf("SaveNextBatch: %v", err)
	}
	if err := s.SaveFilterID(ctx, user, "7"); err != nil {
		t.Fatalf("SaveFilterID: %v", err)
	}

	if got, _ := s.LoadNextBatch(ctx, user); got != "s42_1" {
		t.Errorf("LoadNextBatch = %q, want s42_1", got)
	}
	if got, _ := s.LoadFilterID(ctx, user); got != "7" {
		t.Errorf("LoadFilterID = %q, want 7", got)
	}
	if got := state["@karsb:example.org/next_batch"]; got != "s42_1" {
		t.Errorf("state key layout changed: %v", state)
	}
}

func TestNew_DoesNotContactHomeserver(t *testing.T) {
	c, err := matrix.New(matrix.Config{
		Homeserver:  "https://matrix.example.org",
		UserID:      "@karsb:example.org",
		AccessToken: "secret",
		Rooms:       []string{"!room:example.org"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.UserID() != "@karsb:example.org" {
		t.Errorf("UserID = %q", c.UserID())
	}
}
