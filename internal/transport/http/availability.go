package http

import (
	"net/http"
	"strings"

	"github.com/cimillas/reservation-engine/internal/domain"
)

// AvailabilityReader is the read-only view the availability endpoints need.
type AvailabilityReader interface {
	AvailableKeys(candidates []domain.ResourceKey) []domain.ResourceKey
	Status(key domain.ResourceKey) domain.ResourceStatus
}

// HandleAvailability filters a candidate key list down to the keys that are
// currently reservable: GET /availability?keys=A1,A2,A3.
func HandleAvailability(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		raw := r.URL.Query().Get("keys")
		keys := toResourceKeys(strings.Split(raw, ","))
		if len(keys) == 0 {
			writeError(w, http.StatusBadRequest, codeKeysRequired, "keys query parameter required")
			return
		}

		available := svc.AvailableKeys(keys)
		out := make([]string, len(available))
		for i, k := range available {
			out[i] = string(k)
		}
		writeJSON(w, http.StatusOK, availabilityResponse{Available: out})
	}
}

// HandleResourceStatus reports one key's status: GET /resources/{key}.
func HandleResourceStatus(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		key, ok := parseResourcePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		writeJSON(w, http.StatusOK, resourceStatusResponse{
			Key:    key,
			Status: string(svc.Status(domain.ResourceKey(key))),
		})
	}
}

func parseResourcePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "resources" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type availabilityResponse struct {
	Available []string `json:"available"`
}

type resourceStatusResponse struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}
