package kvstore

import (
	"encoding/json"
	"fmt"
)

// Rejected is a list entry that could not be decoded.
type Rejected struct {
	Index int
	Raw   json.RawMessage
	Err   error
}

// DecodeList decodes a stored JSON array one entry at a time, so a single
// malformed entry does not hide the rest. A missing or null value is an
// empty list. The error is non-nil only when raw is not an array.
func DecodeList[T any](raw json.RawMessage) ([]T, []Rejected, error) {
	items := []T{}
	if len(raw) == 0 || string(raw) == "null" {
		return items, nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return items, nil, fmt.Errorf("decoding list: %w", err)
	}

	var rejected []Rejected
	for i, entry := range entries {
		var item T
		if err := json.Unmarshal(entry, &item); err != nil {
			rejected = append(rejected, Rejected{Index: i, Raw: entry, Err: err})
			continue
		}
		items = append(items, item)
	}
	return items, rejected, nil
}

// MergeRejected appends the raw rejected entries after items, so writing a
// list back keeps entries this version could not read.
func MergeRejected[T any](items []T, rejected []Rejected) []any {
	out := make([]any, 0, len(items)+len(rejected))
	for _, item := range items {
		out = append(out, item)
	}
	for _, r := range rejected {
		out = append(out, r.Raw)
	}
	return out
}
