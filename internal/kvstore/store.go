package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/labelkit/internal/db"
	"github.com/ziadkadry99/labelkit/internal/logging"
)

// subscriberBuffer is how many undelivered changes a subscriber may hold.
const subscriberBuffer = 32

// SQLStore keeps the document in the documents table. Every row carries a
// version bumped on each write, so writes made by other processes sharing
// the database file can be detected by PollExternal.
type SQLStore struct {
	db  *db.DB
	log *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change

	// vmu serializes Set with polling so a poll never sees a version this
	// store wrote but has not recorded yet.
	vmu    sync.Mutex
	seen   map[string]int64
	polled bool
}

// NewSQLStore creates a store backed by the given database.
func NewSQLStore(d *db.DB, log *zap.Logger) *SQLStore {
	return &SQLStore{
		db:   d,
		log:  logging.OrNop(log),
		subs: make(map[int]chan Change),
		seen: make(map[string]int64),
	}
}

// Get reads the requested keys.
func (s *SQLStore) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM documents WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, &StorageError{Op: "get", Keys: keys, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, &StorageError{Op: "get", Keys: keys, Err: err}
		}
		result[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "get", Keys: keys, Err: err}
	}
	return result, nil
}

// Set writes all entries in one transaction, then notifies subscribers.
func (s *SQLStore) Set(ctx context.Context, entries map[string]any) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	encoded := make(map[string]string, len(entries))
	for _, k := range keys {
		data, err := json.Marshal(entries[k])
		if err != nil {
			return &StorageError{Op: "set", Keys: keys, Err: fmt.Errorf("marshaling %s: %w", k, err)}
		}
		encoded[k] = string(data)
	}

	s.vmu.Lock()
	defer s.vmu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "set", Keys: keys, Err: err}
	}
	now := time.Now().UTC()
	versions := make(map[string]int64, len(keys))
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (key, value, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			     version = documents.version + 1, updated_at = excluded.updated_at`,
			k, encoded[k], now,
		); err != nil {
			tx.Rollback()
			return &StorageError{Op: "set", Keys: keys, Err: err}
		}
		var v int64
		if err := tx.QueryRowContext(ctx, `SELECT version FROM documents WHERE key = ?`, k).Scan(&v); err != nil {
			tx.Rollback()
			return &StorageError{Op: "set", Keys: keys, Err: err}
		}
		versions[k] = v
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "set", Keys: keys, Err: err}
	}
	for k, v := range versions {
		s.seen[k] = v
	}

	s.publish(Change{Keys: keys})
	return nil
}

// Subscribe registers a change listener for the lifetime of ctx.
func (s *SQLStore) Subscribe(ctx context.Context) <-chan Change {
	ch := make(chan Change, subscriberBuffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// MarkSeen records the current document versions, so PollExternal only
// reports writes made after this call.
func (s *SQLStore) MarkSeen(ctx context.Context) error {
	_, err := s.pollOnce(ctx)
	return err
}

// PollExternal checks the stored versions every interval and publishes a
// Change for keys written by another process, such as the CLI writing to
// the daemon's database. It returns when ctx is done.
func (s *SQLStore) PollExternal(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		changed, err := s.pollOnce(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			s.log.Warn("reading document versions", zap.Error(err))
		case len(changed) > 0:
			s.log.Info("document changed outside this process", zap.Strings("keys", changed))
			s.publish(Change{Keys: changed})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pollOnce records the current versions and returns the keys whose version
// differs from the last one seen. The first call only takes the baseline.
func (s *SQLStore) pollOnce(ctx context.Context) ([]string, error) {
	s.vmu.Lock()
	defer s.vmu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, version FROM documents`)
	if err != nil {
		return nil, &StorageError{Op: "poll", Err: err}
	}
	defer rows.Close()

	current := make(map[string]int64)
	for rows.Next() {
		var key string
		var v int64
		if err := rows.Scan(&key, &v); err != nil {
			return nil, &StorageError{Op: "poll", Err: err}
		}
		current[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "poll", Err: err}
	}

	first := !s.polled
	var changed []string
	for k, v := range current {
		if s.seen[k] != v {
			changed = append(changed, k)
		}
	}
	for k := range s.seen {
		if _, ok := current[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.seen = current
	s.polled = true
	if first {
		return nil, nil
	}
	sort.Strings(changed)
	return changed, nil
}

func (s *SQLStore) publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- c:
		default:
			s.log.Warn("change subscriber is full, dropping notification",
				zap.Int("subscriber", id), zap.Strings("keys", c.Keys))
		}
	}
}
