package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation expired")
	ErrInvalidTransition   = errors.New("invalid reservation state transition")
	ErrNotHeldByCaller     = errors.New("resource not held by caller")
	ErrHoldExpired         = errors.New("hold expired")
	ErrUnknownResource     = errors.New("unknown resource")
	ErrNoKeys              = errors.New("at least one resource key required")
	ErrOwnerRequired       = errors.New("owner id required")
	ErrInvalidTTL          = errors.New("invalid ttl")
	ErrInvalidID           = errors.New("invalid id")
)

// ConflictError reports which requested keys were not available. It is an
// expected outcome, not a failure: callers inspect Keys to offer alternatives.
type ConflictError struct {
	Keys []ResourceKey
}

func (e *ConflictError) Error() string {
	keys := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		keys[i] = string(k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("resource conflict: %s", strings.Join(keys, ", "))
}

// AsConflict unwraps err into a ConflictError, if it is one.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
