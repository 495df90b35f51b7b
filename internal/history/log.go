// Package history keeps the per-page list of past scans, newest first.
package history

import (
	"sync"

	"github.com/scanview/frontend/internal/model"
)

// Log is an unbounded in-memory list of history entries. Entries are never
// removed; the log lives as long as the page that owns it.
type Log struct {
	mu      sync.RWMutex
	entries []model.HistoryEntry
}

func New() *Log {
	return &Log{}
}

// Append puts entry at the top of the log.
func (l *Log) Append(entry model.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, model.HistoryEntry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
}

// Preload replays results returned by the history service, which lists them
// oldest first. Each one is appended in turn, so the newest ends up on top.
// It returns the entries that were added, in replay order.
func (l *Log) Preload(results []model.ScanResult) []model.HistoryEntry {
	added := make([]model.HistoryEntry, 0, len(results))
	for _, r := range results {
		e := model.NewHistoryEntry(r)
		l.Append(e)
		added = append(added, e)
	}
	return added
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []model.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
