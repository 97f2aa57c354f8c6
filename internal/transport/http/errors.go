package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeOwnerRequired       = "owner_required"
	codeKeysRequired        = "keys_required"
	codeInvalidTTL          = "invalid_ttl"
	codeUnknownResource     = "unknown_resource"
	codeConflict            = "conflict"
	codeReservationNotFound = "reservation_not_found"
	codeReservationExpired  = "reservation_expired"
	codeInvalidTransition   = "invalid_transition"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// ConflictKeys names the busy resource keys on a conflict, so callers
	// can highlight exactly which seats or items are gone.
	ConflictKeys []string `json:"conflict_keys,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeConflict(w http.ResponseWriter, msg string, keys []string) {
	writeErrorResponse(w, http.StatusConflict, errorResponse{
		Error:        msg,
		Code:         codeConflict,
		ConflictKeys: keys,
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
