package gui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const historyFileName = "history.json"

// HistoryEntry represents a single share record
type HistoryEntry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Kinds     []string `json:"kinds"`
	Files     int      `json:"files"`
	Outcome   string   `json:"outcome"` // "completed", "cancelled", "failed"
	Target    string   `json:"target,omitempty"`
	Error     string   `json:"error,omitempty"`
	Timestamp string   `json:"timestamp"`
}

type historyStore struct {
	mu      sync.RWMutex
	entries []HistoryEntry
	limit   int
}

func newHistoryStore(limit int) *historyStore {
	return &historyStore{limit: limit}
}

func (h *historyStore) load() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	dir, err := configDir()
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(dir, historyFileName))
	if err != nil {
		return nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}

	h.entries = entries
	h.trim()
	return h.snapshot()
}

func (h *historyStore) list() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot()
}

func (h *historyStore) add(entry HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().Format(time.RFC3339)
	}

	h.entries = append([]HistoryEntry{entry}, h.entries...)
	h.trim()
	return h.save()
}

func (h *historyStore) clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	return h.save()
}

func (h *historyStore) setLimit(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.limit = n
	h.trim()
}

func (h *historyStore) trim() {
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

func (h *historyStore) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *historyStore) save() error {
	dir, err := configDir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}

	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, historyFileName), data, 0644)
}
