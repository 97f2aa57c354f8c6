package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cimillas/reservation-engine/internal/clock"
	"github.com/cimillas/reservation-engine/internal/domain"
	"github.com/cimillas/reservation-engine/internal/lockmgr"
)

// ArchiveStore persists reservations that reached a terminal state, for
// reporting. Writes are best effort; the engine never depends on them.
type ArchiveStore interface {
	SaveReservation(ctx context.Context, r domain.Reservation) error
}

type ReservationService struct {
	locks      *lockmgr.Manager
	clock      clock.Clock
	logger     *log.Logger
	defaultTTL time.Duration
	catalog    domain.Catalog
	archive    ArchiveStore

	mu           sync.Mutex
	reservations map[string]*domain.Reservation
}

const defaultReservationTTL = 5 * time.Minute

func NewReservationService(locks *lockmgr.Manager, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		locks:        locks,
		clock:        clk,
		logger:       log.Default(),
		defaultTTL:   defaultReservationTTL,
		reservations: make(map[string]*domain.Reservation),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithDefaultTTL overrides the TTL applied when the caller does not supply one.
func WithDefaultTTL(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// WithCatalog makes creation reject keys the catalog does not know about.
func WithCatalog(c domain.Catalog) ReservationServiceOption {
	return func(s *ReservationService) {
		s.catalog = c
	}
}

// WithArchive persists terminal reservations through the given store.
func WithArchive(a ArchiveStore) ReservationServiceOption {
	return func(s *ReservationService) {
		s.archive = a
	}
}

func WithLogger(l *log.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		if l != nil {
			s.logger = l
		}
	}
}

type CreateReservationInput struct {
	OwnerID string
	Keys    []domain.ResourceKey
	// TTL bounds the hold; zero means the service default.
	TTL time.Duration
}

// CreateReservation acquires an exclusive hold over every requested key and
// records a pending reservation owning them. On conflict it returns a
// *domain.ConflictError naming the busy keys and leaves no key held.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (domain.Reservation, error) {
	if in.OwnerID == "" {
		return domain.Reservation{}, domain.ErrOwnerRequired
	}
	if len(in.Keys) == 0 {
		return domain.Reservation{}, domain.ErrNoKeys
	}
	ttl := in.TTL
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if ttl < 0 {
		return domain.Reservation{}, domain.ErrInvalidTTL
	}

	if s.catalog != nil {
		for _, key := range in.Keys {
			exists, err := s.catalog.ResourceExists(ctx, key)
			if err != nil {
				return domain.Reservation{}, fmt.Errorf("catalog lookup for %s: %w", key, err)
			}
			if !exists {
				return domain.Reservation{}, fmt.Errorf("%w: %s", domain.ErrUnknownResource, key)
			}
		}
	}

	id := newID()
	if err := s.locks.TryAcquire(in.Keys, id, ttl); err != nil {
		return domain.Reservation{}, err
	}

	now := s.clock.Now()
	r := &domain.Reservation{
		ID:        id,
		OwnerID:   in.OwnerID,
		Keys:      append([]domain.ResourceKey(nil), in.Keys...),
		Status:    domain.ReservationPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	s.reservations[id] = r
	s.mu.Unlock()

	return *r, nil
}

// ConfirmReservation promotes a pending reservation's holds to commitments.
// A reservation whose TTL already lapsed becomes expired instead, and the
// call reports domain.ErrReservationExpired.
func (s *ReservationService) ConfirmReservation(ctx context.Context, id string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}

	now := s.clock.Now()
	s.expireIfLapsedLocked(ctx, r, now)

	switch r.Status {
	case domain.ReservationPending:
	case domain.ReservationExpired:
		return *r, domain.ErrReservationExpired
	default:
		return *r, domain.ErrInvalidTransition
	}

	if err := s.locks.Promote(r.Keys, r.ID); err != nil {
		if err == domain.ErrHoldExpired {
			s.expireLocked(ctx, r)
			return *r, domain.ErrReservationExpired
		}
		return domain.Reservation{}, err
	}

	r.Status = domain.ReservationConfirmed
	r.ConfirmedAt = now
	s.archiveLocked(ctx, r)
	return *r, nil
}

// CancelReservation releases a pending reservation's holds. Cancel is
// idempotent: cancelling an already cancelled or expired reservation is a
// no-op. Confirmed reservations cannot be cancelled through this path.
func (s *ReservationService) CancelReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}

	now := s.clock.Now()
	s.expireIfLapsedLocked(ctx, r, now)

	switch r.Status {
	case domain.ReservationCancelled, domain.ReservationExpired:
		return nil
	case domain.ReservationConfirmed:
		return domain.ErrInvalidTransition
	}

	released := s.locks.Release(r.Keys, r.ID)
	if len(released) < len(r.Keys) {
		s.logger.Printf("WARN: cancel %s released %d of %d keys", r.ID, len(released), len(r.Keys))
	}
	r.Status = domain.ReservationCancelled
	r.CancelledAt = now
	s.archiveLocked(ctx, r)
	return nil
}

// GetReservation returns the reservation, finalizing it first if its TTL
// lapsed without confirm or cancel.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	s.expireIfLapsedLocked(ctx, r, s.clock.Now())
	return *r, nil
}

// AvailableKeys filters candidates down to keys a reservation could acquire
// right now.
func (s *ReservationService) AvailableKeys(candidates []domain.ResourceKey) []domain.ResourceKey {
	return s.locks.AvailableKeys(candidates)
}

// Status reports the current state of one key.
func (s *ReservationService) Status(key domain.ResourceKey) domain.ResourceStatus {
	return s.locks.Status(key)
}

// ExpireDue reclaims every lapsed hold and finalizes the owning reservations.
// The sweeper calls it on an interval; it is also safe to call directly.
func (s *ReservationService) ExpireDue(ctx context.Context, now time.Time) int {
	reclaimed := s.locks.ReclaimExpired(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, r := range s.reservations {
		if r.Status != domain.ReservationPending {
			continue
		}
		_, keysReclaimed := reclaimed[r.ID]
		if !keysReclaimed && r.ExpiresAt.After(now) {
			continue
		}
		s.expireLocked(ctx, r)
		expired++
	}
	return expired
}

// expireIfLapsedLocked applies lazy expiry to a pending reservation whose TTL
// has passed. Caller must hold s.mu.
func (s *ReservationService) expireIfLapsedLocked(ctx context.Context, r *domain.Reservation, now time.Time) {
	if r.Status != domain.ReservationPending || r.ExpiresAt.After(now) {
		return
	}
	s.expireLocked(ctx, r)
}

// expireLocked marks a pending reservation expired and releases whatever keys
// it still holds. Keys already reacquired by someone else are skipped by the
// holder check inside Release. Caller must hold s.mu.
func (s *ReservationService) expireLocked(ctx context.Context, r *domain.Reservation) {
	s.locks.Release(r.Keys, r.ID)
	r.Status = domain.ReservationExpired
	s.archiveLocked(ctx, r)
}

func (s *ReservationService) archiveLocked(ctx context.Context, r *domain.Reservation) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveReservation(ctx, *r); err != nil {
		s.logger.Printf("WARN: archive reservation %s: %v", r.ID, err)
	}
}
