package lockmgr

import (
	"sync"
	"time"

	"github.com/cimillas/reservation-engine/internal/domain"
)

// entry is the live state for one resource key. Its mutex serializes all
// state transitions for that key; the store mutex only guards the table.
type entry struct {
	mu        sync.Mutex
	status    domain.ResourceStatus
	holderID  string
	expiresAt time.Time
}

// reclaimIfExpired lazily converts a lapsed hold back to available. Caller
// must hold e.mu. Returns the holder that lost the hold, if any.
func (e *entry) reclaimIfExpired(now time.Time) (string, bool) {
	if e.status != domain.ResourceHeld || e.expiresAt.After(now) {
		return "", false
	}
	holder := e.holderID
	e.status = domain.ResourceAvailable
	e.holderID = ""
	e.expiresAt = time.Time{}
	return holder, true
}

func (e *entry) record(key domain.ResourceKey) domain.ResourceRecord {
	return domain.ResourceRecord{
		Key:       key,
		Status:    e.status,
		HolderID:  e.holderID,
		ExpiresAt: e.expiresAt,
	}
}

// store maps resource keys to their entries. Entries are created implicitly
// on first reference, available, and are never deleted: a key that has been
// seen once stays addressable so audit reads keep working.
type store struct {
	mu      sync.Mutex
	entries map[domain.ResourceKey]*entry
}

func newStore() *store {
	return &store{entries: make(map[domain.ResourceKey]*entry)}
}

// entriesFor returns entries for the given keys, creating missing ones, in
// the same order.
func (s *store) entriesFor(keys []domain.ResourceKey) []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entry, len(keys))
	for i, key := range keys {
		e, ok := s.entries[key]
		if !ok {
			e = &entry{status: domain.ResourceAvailable}
			s.entries[key] = e
		}
		out[i] = e
	}
	return out
}

// lookup returns the entry for key without creating one.
func (s *store) lookup(key domain.ResourceKey) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// knownKeys snapshots the current key set, for the reclaim sweep.
func (s *store) knownKeys() []domain.ResourceKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]domain.ResourceKey, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}
