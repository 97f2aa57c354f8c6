package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cimillas/reservation-engine/internal/domain"
)

type stubLifecycle struct {
	res        domain.Reservation
	confirmErr error
	cancelErr  error
	getErr     error
	cancelled  []string
}

func (s *stubLifecycle) ConfirmReservation(_ context.Context, id string) (domain.Reservation, error) {
	if s.confirmErr != nil {
		return domain.Reservation{}, s.confirmErr
	}
	return s.res, nil
}

func (s *stubLifecycle) CancelReservation(_ context.Context, id string) error {
	s.cancelled = append(s.cancelled, id)
	return s.cancelErr
}

func (s *stubLifecycle) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	if s.getErr != nil {
		return domain.Reservation{}, s.getErr
	}
	return s.res, nil
}

func TestHandleReservation(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	confirmed := domain.Reservation{
		ID:          "res-123",
		OwnerID:     "u1",
		Keys:        []domain.ResourceKey{"S1"},
		Status:      domain.ReservationConfirmed,
		CreatedAt:   now,
		ConfirmedAt: now,
	}

	tests := []struct {
		name           string
		method         string
		path           string
		svc            *stubLifecycle
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "confirm success",
			method:         http.MethodPost,
			path:           "/reservations/res-123/confirm",
			svc:            &stubLifecycle{res: confirmed},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"confirmed"`,
		},
		{
			name:           "confirm expired",
			method:         http.MethodPost,
			path:           "/reservations/res-123/confirm",
			svc:            &stubLifecycle{confirmErr: domain.ErrReservationExpired},
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeReservationExpired,
		},
		{
			name:           "confirm terminal",
			method:         http.MethodPost,
			path:           "/reservations/res-123/confirm",
			svc:            &stubLifecycle{confirmErr: domain.ErrInvalidTransition},
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeInvalidTransition,
		},
		{
			name:           "confirm unknown",
			method:         http.MethodPost,
			path:           "/reservations/res-404/confirm",
			svc:            &stubLifecycle{confirmErr: domain.ErrReservationNotFound},
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeReservationNotFound,
		},
		{
			name:           "cancel success",
			method:         http.MethodPost,
			path:           "/reservations/res-123/cancel",
			svc:            &stubLifecycle{},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"cancelled"`,
		},
		{
			name:           "cancel confirmed",
			method:         http.MethodPost,
			path:           "/reservations/res-123/cancel",
			svc:            &stubLifecycle{cancelErr: domain.ErrInvalidTransition},
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeInvalidTransition,
		},
		{
			name:           "get reservation",
			method:         http.MethodGet,
			path:           "/reservations/res-123",
			svc:            &stubLifecycle{res: confirmed},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"id":"res-123"`,
		},
		{
			name:           "get on action path rejected",
			method:         http.MethodGet,
			path:           "/reservations/res-123/confirm",
			svc:            &stubLifecycle{},
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "unknown action",
			method:         http.MethodPost,
			path:           "/reservations/res-123/frobnicate",
			svc:            &stubLifecycle{},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing id",
			method:         http.MethodGet,
			path:           "/reservations/",
			svc:            &stubLifecycle{},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()

			HandleReservation(tc.svc).ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %q", tc.expectedSubstr, rec.Body.String())
			}
		})
	}
}
