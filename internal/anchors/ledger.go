// Package anchors maintains the external anchor ledger: an append-only JSONL
// file recording every batch that was anchored, kept separate from the
// database so the trust record survives independently of it.
package anchors

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one line of the ledger.
type Entry struct {
	BatchID     string    `json:"batch_id"`
	MerkleRoot  string    `json:"merkle_root"`
	AnchoredAt  time.Time `json:"anchored_at"`
	EventCount  int       `json:"event_count"`
	EventHashes []string  `json:"event_hashes"`
}

// Ledger appends and reads anchor entries. Appends are serialized; lines are
// never rewritten or removed.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// NewLedger opens a ledger at path, creating parent directories as needed.
func NewLedger(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &Ledger{path: path}, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Append writes one entry as a single JSON line and syncs it to disk.
func (l *Ledger) Append(entry Entry) error {
	if entry.BatchID == "" {
		return fmt.Errorf("batch id is required")
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return f.Sync()
}

// List returns every ledger entry in file order, oldest first. A missing file
// is an empty ledger.
func (l *Ledger) List() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return entries, nil
}

// Find returns the ledger entry for a batch, or nil when absent.
func (l *Ledger) Find(batchID string) (*Entry, error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].BatchID == batchID {
			return &entries[i], nil
		}
	}
	return nil, nil
}
