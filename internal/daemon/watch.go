package daemon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// WatchState is the last observed version of a watched file.
type WatchState struct {
	Path     string `json:"path"`
	ModTime  string `json:"mod_time"`
	Hash     string `json:"hash"`
	LastSeen string `json:"last_seen"`
}

// FileWatcher polls a single file and reports content changes.
type FileWatcher struct {
	Path string

	mu    sync.Mutex
	state *WatchState
}

func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{Path: path}
}

// Changed reports whether the file content differs from the previous call.
// The first call records a baseline and reports true when the file exists.
// A file that disappears counts as a change once.
func (w *FileWatcher) Changed() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.Path)
	if err != nil {
		if os.IsNotExist(err) {
			existed := w.state != nil
			w.state = nil
			return existed, nil
		}
		return false, fmt.Errorf("stat %s: %w", w.Path, err)
	}

	hash, err := hashFile(w.Path)
	if err != nil {
		return false, fmt.Errorf("hash file: %w", err)
	}

	changed := w.state == nil || w.state.Hash != hash
	w.state = &WatchState{
		Path:     w.Path,
		ModTime:  info.ModTime().UTC().Format(time.RFC3339),
		Hash:     hash,
		LastSeen: time.Now().UTC().Format(time.RFC3339),
	}
	return changed, nil
}

// State returns the last observed state, or nil before the first sighting.
func (w *FileWatcher) State() *WatchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == nil {
		return nil
	}
	s := *w.state
	return &s
}

// hashFile computes SHA256 hash of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
