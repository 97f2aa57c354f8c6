package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/reservation-engine/internal/domain"
)

// ReservationArchive persists reservations that reached a terminal state.
// The live lock table is in-memory; the archive is the reporting surface.
type ReservationArchive struct {
	pool *pgxpool.Pool
}

func NewReservationArchive(pool *pgxpool.Pool) *ReservationArchive {
	return &ReservationArchive{pool: pool}
}

// SaveReservation upserts a terminal reservation. Upsert keeps retried
// archive writes idempotent.
func (r *ReservationArchive) SaveReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, owner_id, resource_keys, status, created_at, expires_at, confirmed_at, cancelled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	confirmed_at = EXCLUDED.confirmed_at,
	cancelled_at = EXCLUDED.cancelled_at`

	keys := make([]string, len(res.Keys))
	for i, k := range res.Keys {
		keys[i] = string(k)
	}

	_, err := r.pool.Exec(ctx, stmt,
		res.ID,
		res.OwnerID,
		keys,
		string(res.Status),
		res.CreatedAt,
		nullableTime(res.ExpiresAt),
		nullableTime(res.ConfirmedAt),
		nullableTime(res.CancelledAt),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

// GetReservation returns one archived reservation.
func (r *ReservationArchive) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	const query = `
SELECT id, owner_id, resource_keys, status, created_at, expires_at, confirmed_at, cancelled_at
FROM reservations
WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// ListByOwner returns archived reservations for one owner, newest first.
func (r *ReservationArchive) ListByOwner(ctx context.Context, ownerID string) ([]domain.Reservation, error) {
	const query = `
SELECT id, owner_id, resource_keys, status, created_at, expires_at, confirmed_at, cancelled_at
FROM reservations
WHERE owner_id = $1
ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var (
		res         domain.Reservation
		keys        []string
		status      string
		expiresAt   *time.Time
		confirmedAt *time.Time
		cancelledAt *time.Time
	)
	err := row.Scan(&res.ID, &res.OwnerID, &keys, &status, &res.CreatedAt, &expiresAt, &confirmedAt, &cancelledAt)
	if err != nil {
		return domain.Reservation{}, err
	}

	res.Keys = make([]domain.ResourceKey, len(keys))
	for i, k := range keys {
		res.Keys[i] = domain.ResourceKey(k)
	}
	res.Status = domain.ReservationStatus(status)
	if expiresAt != nil {
		res.ExpiresAt = *expiresAt
	}
	if confirmedAt != nil {
		res.ConfirmedAt = *confirmedAt
	}
	if cancelledAt != nil {
		res.CancelledAt = *cancelledAt
	}
	return res, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
