package sites

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/metrics"
	"github.com/ziadkadry99/labelkit/internal/model"
)

// Key is the document key holding the ordered site list.
const Key = "sites"

// Store reads and writes the site list in the key-value document.
type Store struct {
	kv  kvstore.Store
	log *zap.Logger
}

// NewStore creates a site store over kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{kv: kv, log: logging.OrNop(log)}
}

// Load returns every site in stored order, or an empty list if the
// document cannot be read. A single site that cannot be decoded is logged
// and left out.
func (s *Store) Load(ctx context.Context) []model.Site {
	list, rejected, err := s.read(ctx)
	if err != nil {
		s.log.Error("loading sites", zap.Error(err))
		return []model.Site{}
	}
	for _, r := range rejected {
		s.log.Error("skipping unreadable site", zap.Int("index", r.Index), zap.Error(r.Err))
	}
	return list
}

// SaveAll replaces the stored site list. Stored entries that could not be
// decoded are written back after list.
func (s *Store) SaveAll(ctx context.Context, list []model.Site) error {
	if list == nil {
		list = []model.Site{}
	}
	var value any = list
	if _, rejected, err := s.read(ctx); err == nil && len(rejected) > 0 {
		s.log.Warn("keeping unreadable sites", zap.Int("count", len(rejected)))
		value = kvstore.MergeRejected(list, rejected)
	}

	err := s.kv.Set(ctx, map[string]any{Key: value})
	metrics.ObserveStorage("set", Key, err)
	if err != nil {
		s.log.Error("saving sites", zap.Error(err))
		return fmt.Errorf("saving sites: %w", err)
	}
	s.log.Info("sites saved", zap.Int("count", len(list)))
	return nil
}

func (s *Store) read(ctx context.Context) ([]model.Site, []kvstore.Rejected, error) {
	raw, err := s.kv.Get(ctx, Key)
	metrics.ObserveStorage("get", Key, err)
	if err != nil {
		return nil, nil, err
	}
	list, rejected, err := kvstore.DecodeList[model.Site](raw[Key])
	if err != nil {
		return nil, nil, fmt.Errorf("decoding sites: %w", err)
	}
	for i := range list {
		list[i].Normalize()
	}
	return list, rejected, nil
}
