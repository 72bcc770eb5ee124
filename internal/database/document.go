package database

import (
	"context"

	"github.com/nao1215/pageflow/internal/model"
)

// DocumentStore is a SnapshotDB bound to one document key.
// It implements the engine's persistence bridge.
type DocumentStore struct {
	db  *SnapshotDB
	key string
}

// For returns the store of the document identified by key.
func (sdb *SnapshotDB) For(key string) *DocumentStore {
	return &DocumentStore{db: sdb, key: key}
}

// Key returns the document key.
func (s *DocumentStore) Key() string {
	return s.key
}

// Save stores snapshot as the latest backup of the document.
func (s *DocumentStore) Save(ctx context.Context, snapshot model.Snapshot) error {
	_, err := s.db.SaveSnapshot(ctx, s.key, snapshot)
	return err
}

// Load returns the latest backup of the document.
func (s *DocumentStore) Load(ctx context.Context) (model.Snapshot, bool, error) {
	return s.db.LatestSnapshot(ctx, s.key)
}
