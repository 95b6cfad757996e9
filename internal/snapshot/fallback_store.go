package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// FallbackStore writes to a primary store and a local store, and reads from
// the primary unless it is unavailable or empty. Reads never merge the two.
type FallbackStore struct {
	Primary Store
	Local   Store
	Logger  *log.Logger

	locks sync.Map // date -> *sync.Mutex
}

// NewFallbackStore composes primary and local. A nil primary means local-only.
func NewFallbackStore(primary, local Store, logger *log.Logger) *FallbackStore {
	if logger == nil {
		logger = log.Default()
	}
	return &FallbackStore{Primary: primary, Local: local, Logger: logger}
}

// Save writes the snapshot to both backends. A primary failure is logged and
// the local write still happens; a local failure is tolerated. It returns an
// error only when no backend accepted the snapshot.
func (s *FallbackStore) Save(ctx context.Context, snap Snapshot) error {
	unlock := s.lockDate(snap.Date)
	defer unlock()

	var errs []error
	saved := false

	if s.Primary != nil {
		if err := s.Primary.Save(ctx, snap); err != nil {
			s.logf("snapshot primary save failed for %s: %v", snap.Date, err)
			errs = append(errs, fmt.Errorf("primary: %w", err))
		} else {
			saved = true
		}
	}

	if s.Local != nil {
		if err := s.Local.Save(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("local: %w", err))
		} else {
			saved = true
		}
	}

	if saved {
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("no snapshot store configured")
	}
	return errors.Join(errs...)
}

// List reads the primary store; the local store is consulted only when the
// primary errors or returns nothing.
func (s *FallbackStore) List(ctx context.Context, days int) ([]Snapshot, error) {
	if s.Primary != nil {
		snaps, err := s.Primary.List(ctx, days)
		if err != nil {
			s.logf("snapshot primary list failed: %v", err)
		} else if len(snaps) > 0 {
			return snaps, nil
		}
	}
	if s.Local == nil {
		return nil, nil
	}
	return s.Local.List(ctx, days)
}

func (s *FallbackStore) lockDate(date string) func() {
	v, _ := s.locks.LoadOrStore(date, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *FallbackStore) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
