package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/NicklasAaStadler/booking/internal/booking"
	"github.com/NicklasAaStadler/booking/internal/service"
	"github.com/NicklasAaStadler/booking/pkg/logging"
)

// Watcher streams session updates over a long-lived connection
type Watcher interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, initial any) error
}

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	watcher        Watcher
	logger         *logging.Logger
}

// NewHandler creates a new Handler instance; watcher may be nil
func NewHandler(bookingService service.BookingService, watcher Watcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		bookingService: bookingService,
		watcher:        watcher,
		logger:         logger,
	}
}

// Request bodies
type (
	DateRequest struct {
		Date string `json:"date"`
	}
	MonthRequest struct {
		Offset int `json:"offset"`
	}
	FloorRequest struct {
		Floor string `json:"floor"`
	}
	RoomRequest struct {
		Room string `json:"room"`
	}
	TimeSlotRequest struct {
		TimeSlot string `json:"timeSlot"`
	}
	ParticipantRequest struct {
		Email string `json:"email"`
	}
)

// ErrorResponse is returned for failed requests. State is set when the
// session exists so the client can render the alert.
type ErrorResponse struct {
	Error string                   `json:"error"`
	Alert string                   `json:"alert,omitempty"`
	State *service.SessionResponse `json:"session,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, resp *service.SessionResponse) {
	status := statusFor(err)
	body := ErrorResponse{Error: err.Error(), State: resp}
	if resp != nil {
		body.Alert = resp.State.Alert
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, "status", status)
	}
	respondJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, booking.ErrUnknownFloor),
		errors.Is(err, booking.ErrUnknownRoom),
		errors.Is(err, booking.ErrUnknownTimeSlot),
		errors.Is(err, booking.ErrInvalidOffset),
		errors.Is(err, booking.ErrUnknownDialog),
		errors.Is(err, booking.ErrUnknownButton):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrNotConfirming),
		errors.Is(err, booking.ErrConfirmInFlight),
		errors.Is(err, booking.ErrDialogClosed):
		return http.StatusConflict
	case booking.IsRejected(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func sessionID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func (h *Handler) reply(w http.ResponseWriter, resp *service.SessionResponse, err error) {
	if err != nil {
		h.respondServiceError(w, err, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCatalog handles GET /api/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.bookingService.Catalog(r.Context()))
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.CreateSession(r.Context())
	if err != nil {
		h.respondServiceError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.GetSession(r.Context(), sessionID(r))
	h.reply(w, resp, err)
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.DeleteSession(r.Context(), sessionID(r)); err != nil {
		h.respondServiceError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectDate handles POST /api/sessions/{id}/date
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req DateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Date == "" {
		respondError(w, http.StatusBadRequest, "Date is required")
		return
	}
	resp, err := h.bookingService.SelectDate(r.Context(), sessionID(r), req.Date)
	h.reply(w, resp, err)
}

// ChangeMonth handles POST /api/sessions/{id}/month
func (h *Handler) ChangeMonth(w http.ResponseWriter, r *http.Request) {
	var req MonthRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Offset != 1 && req.Offset != -1 {
		respondError(w, http.StatusBadRequest, "Offset must be -1 or 1")
		return
	}
	resp, err := h.bookingService.ChangeMonth(r.Context(), sessionID(r), req.Offset)
	h.reply(w, resp, err)
}

// SelectFloor handles POST /api/sessions/{id}/floor
func (h *Handler) SelectFloor(w http.ResponseWriter, r *http.Request) {
	var req FloorRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Floor == "" {
		respondError(w, http.StatusBadRequest, "Floor is required")
		return
	}
	resp, err := h.bookingService.SelectFloor(r.Context(), sessionID(r), req.Floor)
	h.reply(w, resp, err)
}

// ToggleRoom handles POST /api/sessions/{id}/room
func (h *Handler) ToggleRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Room == "" {
		respondError(w, http.StatusBadRequest, "Room is required")
		return
	}
	resp, err := h.bookingService.ToggleRoom(r.Context(), sessionID(r), req.Room)
	h.reply(w, resp, err)
}

// SelectTimeSlot handles POST /api/sessions/{id}/timeslot
func (h *Handler) SelectTimeSlot(w http.ResponseWriter, r *http.Request) {
	var req TimeSlotRequest
	if !decode(w, r, &req) {
		return
	}
	if req.TimeSlot == "" {
		respondError(w, http.StatusBadRequest, "Time slot is required")
		return
	}
	resp, err := h.bookingService.SelectTimeSlot(r.Context(), sessionID(r), req.TimeSlot)
	h.reply(w, resp, err)
}

// SetParticipantEmail handles PUT /api/sessions/{id}/participants/input
func (h *Handler) SetParticipantEmail(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.bookingService.SetParticipantEmail(r.Context(), sessionID(r), req.Email)
	h.reply(w, resp, err)
}

// AddParticipant handles POST /api/sessions/{id}/participants.
// An empty email adds the pending input.
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.bookingService.AddParticipant(r.Context(), sessionID(r), req.Email)
	h.reply(w, resp, err)
}

// RemoveParticipant handles DELETE /api/sessions/{id}/participants/{email}
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.RemoveParticipant(r.Context(), sessionID(r), mux.Vars(r)["email"])
	h.reply(w, resp, err)
}

// Submit handles POST /api/sessions/{id}/submit. A form that fails
// validation is answered with 422 and the flagged state.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.Submit(r.Context(), sessionID(r))
	if err != nil {
		h.respondServiceError(w, err, resp)
		return
	}
	if resp.State.Validation.Any() {
		respondJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /api/sessions/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.Confirm(r.Context(), sessionID(r))
	h.reply(w, resp, err)
}

// Cancel handles POST /api/sessions/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.Cancel(r.Context(), sessionID(r))
	h.reply(w, resp, err)
}

// Dismiss handles POST /api/sessions/{id}/dismiss
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.Dismiss(r.Context(), sessionID(r))
	h.reply(w, resp, err)
}

// DismissAlert handles POST /api/sessions/{id}/alert/dismiss
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookingService.DismissAlert(r.Context(), sessionID(r))
	h.reply(w, resp, err)
}

// PressDialogButton handles POST /api/sessions/{id}/dialogs/{dialog}/buttons/{index}
func (h *Handler) PressDialogButton(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Button index must be a number")
		return
	}
	resp, err := h.bookingService.PressDialogButton(r.Context(), vars["id"], vars["dialog"], index)
	h.reply(w, resp, err)
}

// CloseDialog handles POST /api/sessions/{id}/dialogs/{dialog}/close
func (h *Handler) CloseDialog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp, err := h.bookingService.CloseDialog(r.Context(), vars["id"], vars["dialog"])
	h.reply(w, resp, err)
}

// WatchSession handles GET /api/sessions/{id}/ws
func (h *Handler) WatchSession(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		respondError(w, http.StatusNotImplemented, "Live updates are disabled")
		return
	}
	resp, err := h.bookingService.GetSession(r.Context(), sessionID(r))
	if err != nil {
		h.respondServiceError(w, err, nil)
		return
	}
	id, err := uuid.Parse(resp.SessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Invalid session id")
		return
	}
	if err := h.watcher.Serve(w, r, id, resp.State); err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", resp.SessionID, "error", err)
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
