package orchestrate

import (
	"sync"
	"time"
)

// Entry is one line of the visible processing log.
type Entry struct {
	Time      time.Time
	ItemIndex int
	Stage     string
	Message   string
}

// Log collects processing entries for display alongside the final report.
// It is safe for concurrent use so a pause handler can log too.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// Append records one entry.
func (l *Log) Append(itemIndex int, stage, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Time:      time.Now(),
		ItemIndex: itemIndex,
		Stage:     stage,
		Message:   message,
	})
}

// Entries returns a copy of the recorded entries in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
