package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps snapshot history as one JSON array on local disk.
type FileStore struct {
	Path      string
	Retention int
	Now       func() time.Time

	mu sync.Mutex
}

// NewFileStore returns a FileStore retaining DefaultRetentionDays dates.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, Retention: DefaultRetentionDays}
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Date == "" {
		return fmt.Errorf("snapshot date is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.read()
	history = upsert(history, snap, s.retention())
	return s.write(history)
}

func (s *FileStore) List(ctx context.Context, days int) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return window(s.read(), cutoffDate(s.now(), days)), nil
}

// All returns the whole retained history, ascending by date.
func (s *FileStore) All(ctx context.Context) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.read()
	sortByDate(history)
	return history, nil
}

// read loads the history file. A missing or unreadable file is an empty history.
func (s *FileStore) read() []Snapshot {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil
	}
	var history []Snapshot
	if err := json.Unmarshal(data, &history); err != nil {
		return nil
	}
	return history
}

func (s *FileStore) write(history []Snapshot) error {
	if s.Path == "" {
		return fmt.Errorf("snapshot file path is required")
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshots: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshots: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshots: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("rename snapshots: %w", err)
	}
	return nil
}

func (s *FileStore) retention() int {
	if s.Retention <= 0 {
		return DefaultRetentionDays
	}
	return s.Retention
}

func (s *FileStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
