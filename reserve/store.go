// Package reserve tracks UTXOs that an in-flight or recently broadcast
// transaction has already spent, so that a second send from the same
// wallet does not select them again before the indexer catches up.
//
// Reservations are keyed by outpoint ("txid:vout") and expire on their
// own. An expired reservation is treated as absent.
package reserve

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store holds outpoint reservations.
type Store interface {
	// Reserve marks every outpoint as spent until the given time. It is
	// all-or-nothing: if any outpoint holds an unexpired reservation at
	// now, nothing is written and ErrReserved is returned.
	Reserve(outpoints []string, now, until time.Time) error

	// Release drops the reservations for outpoints. Unknown outpoints are
	// ignored.
	Release(outpoints []string) error

	// Active returns the unexpired reservations at now with their expiry.
	Active(now time.Time) (map[string]time.Time, error)

	// Prune deletes reservations that expired before now and returns how
	// many were removed.
	Prune(now time.Time) (int, error)
}

// validOutpoint checks the "txid:vout" shape.
func validOutpoint(op string) error {
	txid, vout, ok := strings.Cut(op, ":")
	if !ok || txid == "" {
		return fmt.Errorf("%w: %q", ErrInvalidOutpoint, op)
	}
	if _, err := strconv.ParseUint(vout, 10, 32); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOutpoint, op)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	until map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{until: make(map[string]time.Time)}
}

// Reserve implements Store.
func (s *MemoryStore) Reserve(outpoints []string, now, until time.Time) error {
	for _, op := range outpoints {
		if err := validOutpoint(op); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range outpoints {
		if exp, ok := s.until[op]; ok && exp.After(now) {
			return fmt.Errorf("%w: %s", ErrReserved, op)
		}
	}
	for _, op := range outpoints {
		s.until[op] = until
	}
	return nil
}

// Release implements Store.
func (s *MemoryStore) Release(outpoints []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range outpoints {
		delete(s.until, op)
	}
	return nil
}

// Active implements Store.
func (s *MemoryStore) Active(now time.Time) (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.until))
	for op, exp := range s.until {
		if exp.After(now) {
			out[op] = exp
		}
	}
	return out, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for op, exp := range s.until {
		if !exp.After(now) {
			delete(s.until, op)
			n++
		}
	}
	return n, nil
}
