package domain

import "time"

// ResourceKey names one reservable unit: a seat within a show, a SKU within a
// warehouse. Keys are opaque but ordered; multi-key operations rely on their
// natural ordering.
type ResourceKey string

func (k ResourceKey) Less(other ResourceKey) bool {
	return k < other
}

type ResourceStatus string

const (
	ResourceAvailable ResourceStatus = "available"
	ResourceHeld      ResourceStatus = "held"
	ResourceCommitted ResourceStatus = "committed"
)

// ResourceRecord is the per-key state tracked by the lock manager. HolderID is
// the reservation that owns the hold or commitment; ExpiresAt is meaningful
// only while held. Committed records do not expire.
type ResourceRecord struct {
	Key       ResourceKey
	Status    ResourceStatus
	HolderID  string
	ExpiresAt time.Time
}
