package printer

import "sync"

// JobBuffer is a thread-safe ring buffer of recent job records.
type JobBuffer struct {
	mu      sync.RWMutex
	entries []Record
	cap     int
}

// NewJobBuffer creates a buffer holding at most capacity records.
func NewJobBuffer(capacity int) *JobBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &JobBuffer{
		entries: make([]Record, 0, capacity),
		cap:     capacity,
	}
}

// Add appends a record, evicting the oldest when full.
func (jb *JobBuffer) Add(r Record) {
	jb.mu.Lock()
	defer jb.mu.Unlock()

	if len(jb.entries) >= jb.cap {
		copy(jb.entries, jb.entries[1:])
		jb.entries[len(jb.entries)-1] = r
	} else {
		jb.entries = append(jb.entries, r)
	}
}

// Entries returns all records, newest first.
func (jb *JobBuffer) Entries() []Record {
	jb.mu.RLock()
	defer jb.mu.RUnlock()

	result := make([]Record, len(jb.entries))
	for i, j := 0, len(jb.entries)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = jb.entries[j]
	}
	return result
}
