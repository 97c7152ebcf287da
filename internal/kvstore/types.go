// Package kvstore is the persisted key-value document shared by every
// labelkit surface. Each top-level key holds one JSON value; a write
// replaces the given keys atomically and notifies subscribers.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Store is the platform key-value storage service.
type Store interface {
	// Get returns the raw values of the requested keys. Absent keys are
	// missing from the result.
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)
	// Set marshals and writes every entry in a single transaction.
	Set(ctx context.Context, entries map[string]any) error
	// Subscribe delivers a Change after every successful Set until ctx is
	// done, then closes the channel.
	Subscribe(ctx context.Context) <-chan Change
}

// Change names the keys written by one Set.
type Change struct {
	Keys []string `json:"keys"`
}

// Has reports whether any of keys was changed.
func (c Change) Has(keys ...string) bool {
	for _, k := range keys {
		for _, changed := range c.Keys {
			if k == changed {
				return true
			}
		}
	}
	return false
}

// StorageError is a read or write failure of the platform store.
type StorageError struct {
	Op   string
	Keys []string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s [%s]: %v", e.Op, strings.Join(e.Keys, ","), e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
