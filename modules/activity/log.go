package activity

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 200

// Entry is one recorded account event.
type Entry struct {
	Event  string    `json:"event"`
	UserID string    `json:"user_id"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Log is a bounded, mutex-guarded ring of recent entries.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	counts  map[string]int
}

// NewLog creates a log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries: make([]Entry, capacity),
		counts:  make(map[string]int),
	}
}

// Add records an entry, overwriting the oldest one when full.
func (l *Log) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	l.counts[e.Event]++
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every retained entry. userID filters when non-empty.
func (l *Log) Recent(limit int, userID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.next
	if l.full {
		size = len(l.entries)
	}

	out := make([]Entry, 0, min(size, max(limit, 0)))
	for i := 1; i <= size; i++ {
		e := l.entries[(l.next-i+len(l.entries))%len(l.entries)]
		if userID != "" && e.UserID != userID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.full {
		return len(l.entries)
	}
	return l.next
}

// Counts returns the total number of events seen per event name,
// including entries that were evicted.
func (l *Log) Counts() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}
