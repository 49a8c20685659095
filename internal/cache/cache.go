// Package cache is a file-based store for consensus results. Each
// result lives in its own JSON file keyed on the prompt, and a shared
// history file tracks the most recent queries. It persists across
// server sessions, unlike in-process state.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// historyLimit caps how many entries history.json retains.
const historyLimit = 10

// HistoryEntry records one cached query in history.json.
type HistoryEntry struct {
	Prompt    string `json:"prompt"`
	Key       string `json:"key"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model,omitempty"`
	Type      string `json:"type"`
}

// Store reads and writes cached results under a single directory. One
// mutex serializes writes so concurrent tools cannot corrupt
// history.json.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the cache directory if needed and returns a store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Key derives the cache key for a prompt and optional model. The model
// participates so the same prompt against different models caches
// separately.
func Key(prompt, model string) string {
	source := prompt
	if model != "" {
		source = model + ":" + prompt
	}
	sum := md5.Sum([]byte(source))
	return "consensus_" + hex.EncodeToString(sum[:])[:12]
}

func (s *Store) cacheFile(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) historyFile() string {
	return filepath.Join(s.dir, "history.json")
}

// Put stores a result under the prompt's key and appends a history
// entry, trimming history to the most recent entries.
func (s *Store) Put(prompt, model, resultType string, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(prompt, model)
	if err := atomicWrite(s.cacheFile(key), data); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	history := s.readHistory()
	history = append(history, HistoryEntry{
		Prompt:    prompt,
		Key:       key,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Model:     model,
		Type:      resultType,
	})
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	hdata, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if err := atomicWrite(s.historyFile(), hdata); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Get loads a cached result into out. The second return is false when
// no entry exists for the key. A corrupt cache file counts as a miss.
func (s *Store) Get(prompt, model string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.cacheFile(Key(prompt, model)))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache file: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, nil
	}
	return true, nil
}

// Last returns the most recent history entry and its raw cached
// payload, or nil when the cache is empty.
func (s *Store) Last() (*HistoryEntry, json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.readHistory()
	if len(history) == 0 {
		return nil, nil, nil
	}
	last := history[len(history)-1]

	data, err := os.ReadFile(s.cacheFile(last.Key))
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading cache file: %w", err)
	}
	return &last, json.RawMessage(data), nil
}

// Clear deletes every cached result listed in history plus the history
// file itself and returns how many entries were cleared.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.readHistory()
	for _, item := range history {
		if err := os.Remove(s.cacheFile(item.Key)); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("removing cache file: %w", err)
		}
	}
	if err := os.Remove(s.historyFile()); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("removing history: %w", err)
	}
	return len(history), nil
}

// readHistory loads history.json, treating a missing or corrupt file
// as empty. Caller holds the mutex.
func (s *Store) readHistory() []HistoryEntry {
	data, err := os.ReadFile(s.historyFile())
	if err != nil {
		return nil
	}
	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil
	}
	return history
}

// atomicWrite writes via a temp file in the same directory and renames
// over the target, so readers never observe a partial file.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
