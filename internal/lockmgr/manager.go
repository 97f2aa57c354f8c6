// Package lockmgr grants temporary, mutually exclusive holds over sets of
// resource keys. A hold is TTL-bounded; promoting it yields a durable
// commitment; lapsed holds are reclaimed lazily on every touch and eagerly by
// ReclaimExpired.
//
// Multi-key operations lock per-key entries in ascending key order, so two
// acquisitions sharing keys always contend in the same relative order and
// cannot deadlock. Acquisitions over disjoint key sets never serialize
// against each other.
package lockmgr

import (
	"sort"
	"time"

	"github.com/cimillas/reservation-engine/internal/clock"
	"github.com/cimillas/reservation-engine/internal/domain"
)

type Manager struct {
	clock clock.Clock
	store *store
}

func New(clk clock.Clock) *Manager {
	return &Manager{
		clock: clk,
		store: newStore(),
	}
}

// TryAcquire attempts an atomic hold over every key for holderID. It fails
// fast with a *domain.ConflictError naming every busy key; on conflict no key
// state changes. A key already held by holderID is re-held with the fresh TTL.
func (m *Manager) TryAcquire(keys []domain.ResourceKey, holderID string, ttl time.Duration) error {
	if len(keys) == 0 {
		return domain.ErrNoKeys
	}
	if ttl <= 0 {
		return domain.ErrInvalidTTL
	}

	sorted := sortedUnique(keys)
	entries := m.store.entriesFor(sorted)
	unlock := lockAll(entries)
	defer unlock()

	now := m.clock.Now()

	var busy []domain.ResourceKey
	for i, e := range entries {
		e.reclaimIfExpired(now)
		switch {
		case e.status == domain.ResourceAvailable:
		case e.status == domain.ResourceHeld && e.holderID == holderID:
		default:
			busy = append(busy, sorted[i])
		}
	}
	if len(busy) > 0 {
		return &domain.ConflictError{Keys: busy}
	}

	expiresAt := now.Add(ttl)
	for _, e := range entries {
		e.status = domain.ResourceHeld
		e.holderID = holderID
		e.expiresAt = expiresAt
	}
	return nil
}

// Release returns every key held by holderID to available and reports which
// keys were actually released. Keys that are already available, expired, or
// owned by someone else are skipped: release is called defensively, including
// after expiry, and must never fail.
func (m *Manager) Release(keys []domain.ResourceKey, holderID string) []domain.ResourceKey {
	sorted := sortedUnique(keys)
	entries := m.store.entriesFor(sorted)
	unlock := lockAll(entries)
	defer unlock()

	now := m.clock.Now()

	var released []domain.ResourceKey
	for i, e := range entries {
		e.reclaimIfExpired(now)
		if e.status != domain.ResourceHeld || e.holderID != holderID {
			continue
		}
		e.status = domain.ResourceAvailable
		e.holderID = ""
		e.expiresAt = time.Time{}
		released = append(released, sorted[i])
	}
	return released
}

// Promote converts every key from held to committed, atomically. It fails
// without touching any key if one is past its TTL (domain.ErrHoldExpired) or
// not held by holderID (domain.ErrNotHeldByCaller). Commitments do not
// expire; Release does not undo them.
func (m *Manager) Promote(keys []domain.ResourceKey, holderID string) error {
	if len(keys) == 0 {
		return domain.ErrNoKeys
	}

	sorted := sortedUnique(keys)
	entries := m.store.entriesFor(sorted)
	unlock := lockAll(entries)
	defer unlock()

	now := m.clock.Now()

	for _, e := range entries {
		if e.status == domain.ResourceHeld && e.holderID == holderID && !e.expiresAt.After(now) {
			return domain.ErrHoldExpired
		}
		if e.status != domain.ResourceHeld || e.holderID != holderID {
			return domain.ErrNotHeldByCaller
		}
	}

	for _, e := range entries {
		e.status = domain.ResourceCommitted
		e.expiresAt = time.Time{}
	}
	return nil
}

// Status reports the current status of a key, applying lazy expiry first. A
// never-seen key is available.
func (m *Manager) Status(key domain.ResourceKey) domain.ResourceStatus {
	e, ok := m.store.lookup(key)
	if !ok {
		return domain.ResourceAvailable
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reclaimIfExpired(m.clock.Now())
	return e.status
}

// IsLocked reports whether the key is currently held or committed.
func (m *Manager) IsLocked(key domain.ResourceKey) bool {
	return m.Status(key) != domain.ResourceAvailable
}

// Record returns the full record for a key, for display and audit reads.
func (m *Manager) Record(key domain.ResourceKey) domain.ResourceRecord {
	e, ok := m.store.lookup(key)
	if !ok {
		return domain.ResourceRecord{Key: key, Status: domain.ResourceAvailable}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reclaimIfExpired(m.clock.Now())
	return e.record(key)
}

// AvailableKeys filters candidates down to the keys a new acquisition would
// currently succeed on.
func (m *Manager) AvailableKeys(candidates []domain.ResourceKey) []domain.ResourceKey {
	out := make([]domain.ResourceKey, 0, len(candidates))
	for _, key := range sortedUnique(candidates) {
		if m.Status(key) == domain.ResourceAvailable {
			out = append(out, key)
		}
	}
	return out
}

// ReclaimExpired sweeps every known key and releases lapsed holds, returning
// the reclaimed keys grouped by the holder that lost them. Lazy expiry makes
// lapsed holds invisible before the sweep runs; the sweep exists so that
// holders' reservations can be finalized without waiting to be queried.
func (m *Manager) ReclaimExpired(now time.Time) map[string][]domain.ResourceKey {
	reclaimed := make(map[string][]domain.ResourceKey)
	for _, key := range m.store.knownKeys() {
		e, ok := m.store.lookup(key)
		if !ok {
			continue
		}
		e.mu.Lock()
		holder, expired := e.reclaimIfExpired(now)
		e.mu.Unlock()
		if expired {
			reclaimed[holder] = append(reclaimed[holder], key)
		}
	}
	return reclaimed
}

// lockAll locks entries in order and returns a function unlocking them all.
// Entries must already be sorted by key; this is what keeps concurrent
// multi-key acquisitions deadlock-free.
func lockAll(entries []*entry) func() {
	for _, e := range entries {
		e.mu.Lock()
	}
	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
	}
}

func sortedUnique(keys []domain.ResourceKey) []domain.ResourceKey {
	out := make([]domain.ResourceKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })

	n := 0
	for i, key := range out {
		if i == 0 || key != out[n-1] {
			out[n] = key
			n++
		}
	}
	return out[:n]
}
