package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/NicklasAaStadler/booking/internal/handlers"
	"github.com/NicklasAaStadler/booking/internal/service"
	"github.com/NicklasAaStadler/booking/internal/service/mocks"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSetupRouter_CORS(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	r := SetupRouter(handlers.NewHandler(mockService, nil, nil), Config{AllowedOrigin: "https://rooms.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/abc/confirm", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://rooms.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	mockService.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestSetupRouter_DefaultOrigin(t *testing.T) {
	r := SetupRouter(handlers.NewHandler(new(mocks.MockBookingService), nil, nil), Config{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRouter_Routes(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	r := SetupRouter(handlers.NewHandler(mockService, nil, nil), Config{})

	resp := &service.SessionResponse{SessionID: "abc"}
	mockService.On("Cancel", mock.Anything, "abc").Return(resp, nil)
	mockService.On("DismissAlert", mock.Anything, "abc").Return(resp, nil)
	mockService.On("CloseDialog", mock.Anything, "abc", "success").Return(resp, nil)
	mockService.On("PressDialogButton", mock.Anything, "abc", "confirm", 0).Return(resp, nil)
	mockService.On("SetParticipantEmail", mock.Anything, "abc", "x@y.dk").Return(resp, nil)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/api/sessions/abc/cancel", "", http.StatusOK},
		{http.MethodPost, "/api/sessions/abc/alert/dismiss", "", http.StatusOK},
		{http.MethodPost, "/api/sessions/abc/dialogs/success/close", "", http.StatusOK},
		{http.MethodPost, "/api/sessions/abc/dialogs/confirm/buttons/0", "", http.StatusOK},
		{http.MethodPut, "/api/sessions/abc/participants/input", `{"email":"x@y.dk"}`, http.StatusOK},
		{http.MethodPost, "/api/sessions/abc/dialogs/confirm/buttons/x", "", http.StatusNotFound},
		{http.MethodGet, "/api/sessions/abc/cancel", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/metrics", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	mockService.AssertExpectations(t)
}

func TestSetupRouter_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("roombooking_sessions_active 0\n"))
	})
	r := SetupRouter(handlers.NewHandler(new(mocks.MockBookingService), nil, nil), Config{MetricsHandler: metrics})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roombooking_sessions_active")
}

func TestSetupRouter_Ready(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
	}{
		{name: "no database", status: http.StatusOK},
		{name: "database up", db: pingerFunc(func(context.Context) error { return nil }), status: http.StatusOK},
		{name: "database down", db: pingerFunc(func(context.Context) error { return errors.New("refused") }), status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SetupRouter(handlers.NewHandler(new(mocks.MockBookingService), nil, nil), Config{Database: tt.db})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
