package agent

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dayuer/virtualco/internal/utils"
)

// ActivityLog is an agent's append-only record of what it saw and did.
type ActivityLog struct {
	mu      sync.RWMutex
	entries []string
}

// Append records one entry.
func (l *ActivityLog) Append(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of every entry in order.
func (l *ActivityLog) Entries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Contains reports whether any entry contains substr.
func (l *ActivityLog) Contains(substr string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

// AppendHistory appends every entry to a HISTORY-style markdown file under a
// timestamped run heading, one paragraph per entry.
func (l *ActivityLog) AppendHistory(path string) error {
	if _, err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("## Run " + utils.Timestamp() + "\n\n"); err != nil {
		return err
	}
	for _, e := range l.Entries() {
		if _, err := f.WriteString(strings.TrimRight(e, "\n") + "\n\n"); err != nil {
			return err
		}
	}
	return nil
}
