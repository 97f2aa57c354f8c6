package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cimillas/reservation-engine/internal/app"
	"github.com/cimillas/reservation-engine/internal/domain"
)

// ReservationCreator is the minimal interface needed to create a reservation.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, in app.CreateReservationInput) (domain.Reservation, error)
}

// HandleCreateReservation returns an HTTP handler for creating reservations.
func HandleCreateReservation(svc ReservationCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createReservationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.CreateReservation(r.Context(), app.CreateReservationInput{
			OwnerID: req.OwnerID,
			Keys:    toResourceKeys(req.Keys),
			TTL:     time.Duration(req.TTLSeconds) * time.Second,
		})
		if err != nil {
			writeReservationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toReservationResponse(res))
	}
}

func writeReservationError(w http.ResponseWriter, err error) {
	if conflict, ok := domain.AsConflict(err); ok {
		keys := make([]string, len(conflict.Keys))
		for i, k := range conflict.Keys {
			keys[i] = string(k)
		}
		writeConflict(w, err.Error(), keys)
		return
	}
	switch {
	case errors.Is(err, domain.ErrOwnerRequired):
		writeError(w, http.StatusBadRequest, codeOwnerRequired, err.Error())
	case errors.Is(err, domain.ErrNoKeys):
		writeError(w, http.StatusBadRequest, codeKeysRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidTTL):
		writeError(w, http.StatusBadRequest, codeInvalidTTL, err.Error())
	case errors.Is(err, domain.ErrUnknownResource):
		writeError(w, http.StatusNotFound, codeUnknownResource, err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
	case errors.Is(err, domain.ErrReservationExpired):
		writeError(w, http.StatusConflict, codeReservationExpired, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createReservationRequest struct {
	OwnerID    string   `json:"owner_id"`
	Keys       []string `json:"keys"`
	TTLSeconds int      `json:"ttl_seconds"`
}

type reservationResponse struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Keys        []string   `json:"keys"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toReservationResponse(res domain.Reservation) reservationResponse {
	keys := make([]string, len(res.Keys))
	for i, k := range res.Keys {
		keys[i] = string(k)
	}
	out := reservationResponse{
		ID:        res.ID,
		OwnerID:   res.OwnerID,
		Keys:      keys,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt,
	}
	if res.Status == domain.ReservationPending && !res.ExpiresAt.IsZero() {
		out.ExpiresAt = &res.ExpiresAt
	}
	if !res.ConfirmedAt.IsZero() {
		out.ConfirmedAt = &res.ConfirmedAt
	}
	if !res.CancelledAt.IsZero() {
		out.CancelledAt = &res.CancelledAt
	}
	return out
}

func toResourceKeys(keys []string) []domain.ResourceKey {
	out := make([]domain.ResourceKey, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, domain.ResourceKey(k))
	}
	return out
}
