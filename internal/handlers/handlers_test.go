package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NicklasAaStadler/booking/internal/booking"
	"github.com/NicklasAaStadler/booking/internal/service"
	"github.com/NicklasAaStadler/booking/internal/service/mocks"
)

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/date", h.SelectDate).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/month", h.ChangeMonth).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/floor", h.SelectFloor).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/room", h.ToggleRoom).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/timeslot", h.SelectTimeSlot).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/participants", h.AddParticipant).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/participants/{email}", h.RemoveParticipant).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/submit", h.Submit).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/confirm", h.Confirm).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/dialogs/{dialog}/buttons/{index}", h.PressDialogButton).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/ws", h.WatchSession)
	return r
}

func doRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionResponse(id string) *service.SessionResponse {
	return &service.SessionResponse{SessionID: id, State: booking.View{Phase: booking.PhaseIdle}}
}

func TestHandler_GetCatalog(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	mockService.On("Catalog", mock.Anything).Return(&service.Catalog{
		Floors:    []service.Floor{{Name: "1 sal", Rooms: []string{"1.1"}}},
		TimeSlots: []string{"08:00-09:15"},
	})

	rec := doRequest(router, http.MethodGet, "/api/catalog", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response service.Catalog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "1 sal", response.Floors[0].Name)
	mockService.AssertExpectations(t)
}

func TestHandler_CreateSession(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	id := uuid.NewString()
	mockService.On("CreateSession", mock.Anything).Return(sessionResponse(id), nil)

	rec := doRequest(router, http.MethodPost, "/api/sessions", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response service.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, id, response.SessionID)
}

func TestHandler_GetSession(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name           string
		mockReturn     *service.SessionResponse
		mockError      error
		expectedStatus int
	}{
		{name: "session found", mockReturn: sessionResponse(id), expectedStatus: http.StatusOK},
		{name: "session not found", mockError: service.ErrSessionNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockBookingService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))

			mockService.On("GetSession", mock.Anything, id).Return(tt.mockReturn, tt.mockError)

			rec := doRequest(router, http.MethodGet, "/api/sessions/"+id, nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_SelectionRequests(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name           string
		path           string
		body           interface{}
		method         string
		args           []interface{}
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name: "select date", path: "/date", body: DateRequest{Date: "2025-03-10"},
			method: "SelectDate", args: []interface{}{"2025-03-10"},
			expectedStatus: http.StatusOK, shouldCallMock: true,
		},
		{
			name: "missing date", path: "/date", body: DateRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad date", path: "/date", body: DateRequest{Date: "tomorrow"},
			method: "SelectDate", args: []interface{}{"tomorrow"}, mockError: service.ErrInvalidDate,
			expectedStatus: http.StatusBadRequest, shouldCallMock: true,
		},
		{
			name: "next month", path: "/month", body: MonthRequest{Offset: 1},
			method: "ChangeMonth", args: []interface{}{1},
			expectedStatus: http.StatusOK, shouldCallMock: true,
		},
		{
			name: "month offset out of range", path: "/month", body: MonthRequest{Offset: 4},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "select floor", path: "/floor", body: FloorRequest{Floor: "2 sal"},
			method: "SelectFloor", args: []interface{}{"2 sal"},
			expectedStatus: http.StatusOK, shouldCallMock: true,
		},
		{
			name: "unknown floor", path: "/floor", body: FloorRequest{Floor: "loft"},
			method: "SelectFloor", args: []interface{}{"loft"}, mockError: booking.ErrUnknownFloor,
			expectedStatus: http.StatusBadRequest, shouldCallMock: true,
		},
		{
			name: "toggle room", path: "/room", body: RoomRequest{Room: "2.2"},
			method: "ToggleRoom", args: []interface{}{"2.2"},
			expectedStatus: http.StatusOK, shouldCallMock: true,
		},
		{
			name: "missing room", path: "/room", body: RoomRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "select slot", path: "/timeslot", body: TimeSlotRequest{TimeSlot: "11:00-12:15"},
			method: "SelectTimeSlot", args: []interface{}{"11:00-12:15"},
			expectedStatus: http.StatusOK, shouldCallMock: true,
		},
		{
			name: "add participant", path: "/participants", body: ParticipantRequest{Email: "a@b.com"},
			method: "AddParticipant", args: []interface{}{"a@b.com"},
			expectedStatus: http.StatusOK, shouldCallMock: true,
		},
		{
			name: "invalid body", path: "/floor", body: "not json object",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockBookingService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))

			if tt.shouldCallMock {
				args := append([]interface{}{mock.Anything, id}, tt.args...)
				var ret *service.SessionResponse
				if tt.mockError == nil {
					ret = sessionResponse(id)
				}
				mockService.On(tt.method, args...).Return(ret, tt.mockError)
			}

			rec := doRequest(router, http.MethodPost, "/api/sessions/"+id+tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_RemoveParticipant(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	id := uuid.NewString()

	mockService.On("RemoveParticipant", mock.Anything, id, "a@b.com").Return(sessionResponse(id), nil)

	rec := doRequest(router, http.MethodDelete, "/api/sessions/"+id+"/participants/a@b.com", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_Submit(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name           string
		validation     booking.ValidationErrors
		expectedStatus int
	}{
		{name: "valid form", expectedStatus: http.StatusOK},
		{name: "missing room", validation: booking.ValidationErrors{Room: true}, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockBookingService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))

			resp := sessionResponse(id)
			resp.State.Validation = tt.validation
			mockService.On("Submit", mock.Anything, id).Return(resp, nil)

			rec := doRequest(router, http.MethodPost, "/api/sessions/"+id+"/submit", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body service.SessionResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.validation, body.State.Validation)
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name           string
		mockError      error
		alert          string
		expectedStatus int
	}{
		{name: "booking created", expectedStatus: http.StatusOK},
		{
			name:           "remote rejected",
			mockError:      &booking.RejectedError{Message: "permission denied"},
			alert:          "Der opstod en fejl ved oprettelse af bookingen: permission denied",
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "unexpected",
			mockError:      errors.New("boom"),
			alert:          "Der opstod en uventet fejl: boom",
			expectedStatus: http.StatusInternalServerError,
		},
		{name: "nothing to confirm", mockError: booking.ErrNotConfirming, expectedStatus: http.StatusConflict},
		{name: "double submit", mockError: booking.ErrConfirmInFlight, expectedStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockBookingService)
			router := setupTestRouter(NewHandler(mockService, nil, nil))

			resp := sessionResponse(id)
			resp.State.Alert = tt.alert
			mockService.On("Confirm", mock.Anything, id).Return(resp, tt.mockError)

			rec := doRequest(router, http.MethodPost, "/api/sessions/"+id+"/confirm", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.mockError != nil {
				var body ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.alert, body.Alert)
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestHandler_PressDialogButton(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	id := uuid.NewString()

	mockService.On("PressDialogButton", mock.Anything, id, "confirm", 1).Return(sessionResponse(id), nil)

	rec := doRequest(router, http.MethodPost, "/api/sessions/"+id+"/dialogs/confirm/buttons/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/sessions/"+id+"/dialogs/confirm/buttons/first", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_DeleteSession(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))
	id := uuid.NewString()

	mockService.On("DeleteSession", mock.Anything, id).Return(nil).Once()
	mockService.On("DeleteSession", mock.Anything, id).Return(service.ErrSessionNotFound).Once()

	assert.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, "/api/sessions/"+id, nil).Code)
}

func TestHandler_WatchSessionDisabled(t *testing.T) {
	mockService := new(mocks.MockBookingService)
	router := setupTestRouter(NewHandler(mockService, nil, nil))

	rec := doRequest(router, http.MethodGet, "/api/sessions/"+uuid.NewString()+"/ws", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(booking.ErrDialogClosed))
	assert.Equal(t, http.StatusBadRequest, statusFor(booking.ErrUnknownButton))
	assert.Equal(t, http.StatusBadRequest, statusFor(booking.ErrUnknownTimeSlot))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}
