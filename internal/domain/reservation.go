package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// Terminal reports whether no further transitions are allowed.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationConfirmed || s == ReservationCancelled || s == ReservationExpired
}

// Reservation groups one caller's intent over a set of resource keys. The key
// set is fixed at creation. ExpiresAt applies only while pending; ConfirmedAt
// and CancelledAt record the terminal transition.
type Reservation struct {
	ID          string
	OwnerID     string
	Keys        []ResourceKey
	Status      ReservationStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ConfirmedAt time.Time
	CancelledAt time.Time
}
