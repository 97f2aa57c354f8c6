package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cimillas/reservation-engine/internal/domain"
)

type stubAvailability struct {
	available []domain.ResourceKey
	statuses  map[domain.ResourceKey]domain.ResourceStatus
}

func (s *stubAvailability) AvailableKeys(_ []domain.ResourceKey) []domain.ResourceKey {
	return s.available
}

func (s *stubAvailability) Status(key domain.ResourceKey) domain.ResourceStatus {
	if st, ok := s.statuses[key]; ok {
		return st
	}
	return domain.ResourceAvailable
}

func TestHandleAvailability(t *testing.T) {
	t.Parallel()

	t.Run("returns available keys", func(t *testing.T) {
		t.Parallel()

		svc := &stubAvailability{available: []domain.ResourceKey{"A1", "A3"}}
		req := httptest.NewRequest(http.MethodGet, "/availability?keys=A1,A2,A3", nil)
		rec := httptest.NewRecorder()

		HandleAvailability(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"available":["A1","A3"]`) {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("requires keys parameter", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/availability", nil)
		rec := httptest.NewRecorder()

		HandleAvailability(&stubAvailability{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/availability?keys=A1", nil)
		rec := httptest.NewRecorder()

		HandleAvailability(&stubAvailability{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleResourceStatus(t *testing.T) {
	t.Parallel()

	svc := &stubAvailability{statuses: map[domain.ResourceKey]domain.ResourceStatus{
		"A1": domain.ResourceHeld,
	}}

	t.Run("reports key status", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/resources/A1", nil)
		rec := httptest.NewRecorder()

		HandleResourceStatus(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"held"`) {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("never-seen key is available", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/resources/Z9", nil)
		rec := httptest.NewRecorder()

		HandleResourceStatus(svc).ServeHTTP(rec, req)

		if !strings.Contains(rec.Body.String(), `"status":"available"`) {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("missing key 404s", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/resources/", nil)
		rec := httptest.NewRecorder()

		HandleResourceStatus(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}
