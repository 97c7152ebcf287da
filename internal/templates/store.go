package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/kvstore"
	"github.com/ziadkadry99/labelkit/internal/logging"
	"github.com/ziadkadry99/labelkit/internal/metrics"
	"github.com/ziadkadry99/labelkit/internal/model"
)

// Key is the document key holding the ordered template list.
const Key = "templates"

// Store reads and writes the template list in the key-value document.
type Store struct {
	kv  kvstore.Store
	log *zap.Logger
}

// NewStore creates a template store over kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{kv: kv, log: logging.OrNop(log)}
}

// Load returns every template in stored order. Any storage or decoding
// failure is logged and yields an empty list. A single template that
// cannot be decoded is logged and left out.
func (s *Store) Load(ctx context.Context) []model.Template {
	list, rejected, err := s.read(ctx)
	if err != nil {
		s.log.Error("loading templates", zap.Error(err))
		return []model.Template{}
	}
	for _, r := range rejected {
		s.log.Error("skipping unreadable template", zap.Int("index", r.Index), zap.Error(r.Err))
	}
	s.log.Debug("templates loaded", zap.Int("count", len(list)))
	return list
}

// SaveAll replaces the stored template list. Stored entries that could not
// be decoded are written back after list. It does not retry.
func (s *Store) SaveAll(ctx context.Context, list []model.Template) error {
	if list == nil {
		list = []model.Template{}
	}
	var value any = list
	if _, rejected, err := s.read(ctx); err == nil && len(rejected) > 0 {
		s.log.Warn("keeping unreadable templates", zap.Int("count", len(rejected)))
		value = kvstore.MergeRejected(list, rejected)
	}

	err := s.kv.Set(ctx, map[string]any{Key: value})
	metrics.ObserveStorage("set", Key, err)
	if err != nil {
		s.log.Error("saving templates", zap.Error(err))
		return fmt.Errorf("saving templates: %w", err)
	}
	s.log.Info("templates saved", zap.Int("count", len(list)))
	return nil
}

// read returns the decodable templates and the stored entries that failed.
func (s *Store) read(ctx context.Context) ([]model.Template, []kvstore.Rejected, error) {
	raw, err := s.kv.Get(ctx, Key)
	metrics.ObserveStorage("get", Key, err)
	if err != nil {
		return nil, nil, err
	}
	list, rejected, err := kvstore.DecodeList[model.Template](raw[Key])
	if err != nil {
		return nil, nil, fmt.Errorf("decoding templates: %w", err)
	}
	for i := range list {
		list[i].Normalize()
	}
	return list, rejected, nil
}

// Get returns the stored template with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Template, bool) {
	return model.FindTemplate(s.Load(ctx), id)
}

// Export writes every stored template to w in the given format.
func (s *Store) Export(ctx context.Context, w io.Writer, format Format) error {
	list := s.Load(ctx)
	if err := Encode(w, list, format); err != nil {
		return fmt.Errorf("exporting templates: %w", err)
	}
	s.log.Debug("templates exported", zap.Int("count", len(list)), zap.String("format", string(format)))
	return nil
}

// Import merges incoming templates into the stored list: a template whose
// id already exists replaces it in place, others are appended. Templates
// without an id get a new one. If any template fails validation nothing is
// written and the returned error wraps its *model.ValidationError.
func (s *Store) Import(ctx context.Context, incoming []model.Template) (added, replaced int, err error) {
	for i, t := range incoming {
		if err := t.Validate(); err != nil {
			return 0, 0, fmt.Errorf("template %d %q: %w", i+1, t.ID, err)
		}
	}

	list := s.Load(ctx)
	for _, t := range incoming {
		t.Normalize()
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		replacedOne := false
		for i := range list {
			if list[i].ID == t.ID {
				list[i] = t
				replacedOne = true
				break
			}
		}
		if replacedOne {
			replaced++
		} else {
			list = append(list, t)
			added++
		}
	}
	if err := s.SaveAll(ctx, list); err != nil {
		return 0, 0, err
	}
	return added, replaced, nil
}
