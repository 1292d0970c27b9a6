package matrix

import (
	"context"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// SyncState is the key/value persistence behind SyncStore. *store.Store
// implements it over the matrix_sync_state table.
type SyncState interface {
	SaveSyncValue(ctx context.Context, userID, key, value string) error
	LoadSyncValue(ctx context.Context, userID, key string) (string, error)
}

const (
	keyFilterID  = "filter_id"
	keyNextBatch = "next_batch"
)

var _ mautrix.SyncStore = (*SyncStore)(nil)

// SyncStore is a mautrix.SyncStore that keeps the filter ID and the /sync
// next_batch token in SyncState, so a restarted bot resumes where it stopped
// instead of answering old questions again.
type SyncStore struct {
	state SyncState
}

// NewSyncStore wraps state.
func NewSyncStore(state SyncState) *SyncStore {
	return &SyncStore{state: state}
}

func (s *SyncStore) SaveFilterID(ctx context.Context, userID id.UserID, filterID string) error {
	return s.state.SaveSyncValue(ctx, userID.String(), keyFilterID, filterID)
}

// LoadFilterID returns "" when no filter was saved.
func (s *SyncStore) LoadFilterID(ctx context.Context, userID id.UserID) (string, error) {
	return s.state.LoadSyncValue(ctx, userID.String(), keyFilterID)
}

func (s *SyncStore) SaveNextBatch(ctx context.Context, userID id.UserID, nextBatchToken string) error {
	return s.state.SaveSyncValue(ctx, userID.String(), keyNextBatch, nextBatchToken)
}

// LoadNextBatch returns "" on first run.
func (s *SyncStore) LoadNextBatch(ctx context.Context, userID id.UserID) (string, error) {
	return s.state.LoadSyncValue(ctx, userID.String(), keyNextBatch)
}
