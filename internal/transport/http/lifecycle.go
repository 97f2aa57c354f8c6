package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cimillas/reservation-engine/internal/domain"
)

// ReservationLifecycle is the minimal interface needed to confirm, cancel and
// read reservations.
type ReservationLifecycle interface {
	ConfirmReservation(ctx context.Context, id string) (domain.Reservation, error)
	CancelReservation(ctx context.Context, id string) error
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
}

// HandleReservation routes /reservations/{id} and its confirm/cancel actions.
func HandleReservation(svc ReservationLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseReservationPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			res, err := svc.GetReservation(r.Context(), id)
			if err != nil {
				writeReservationError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toReservationResponse(res))

		case "confirm":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			res, err := svc.ConfirmReservation(r.Context(), id)
			if err != nil {
				writeReservationError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toReservationResponse(res))

		case "cancel":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			if err := svc.CancelReservation(r.Context(), id); err != nil {
				writeReservationError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})

		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

// parseReservationPath splits /reservations/{id}[/{action}].
func parseReservationPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "reservations" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 3 {
		if parts[2] == "" {
			return "", "", false
		}
		return parts[1], parts[2], true
	}
	return parts[1], "", true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
