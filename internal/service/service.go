package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NicklasAaStadler/booking/internal/booking"
	"github.com/NicklasAaStadler/booking/internal/catalog"
	"github.com/NicklasAaStadler/booking/internal/metrics"
	"github.com/NicklasAaStadler/booking/internal/websocket"
	"github.com/NicklasAaStadler/booking/pkg/logging"
)

const DateLayout = "2006-01-02"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDate     = errors.New("invalid date")
)

// SessionResponse is the state of one booking form returned to clients
type SessionResponse struct {
	SessionID string       `json:"sessionId"`
	State     booking.View `json:"state"`
}

// Floor is one floor and its rooms
type Floor struct {
	Name  string   `json:"name"`
	Rooms []string `json:"rooms"`
}

// Catalog lists everything that can be booked
type Catalog struct {
	Floors       []Floor  `json:"floors"`
	TimeSlots    []string `json:"timeSlots"`
	DefaultFloor string   `json:"defaultFloor"`
}

// BookingService defines the booking form operations exposed over HTTP
type BookingService interface {
	Catalog(ctx context.Context) *Catalog
	CreateSession(ctx context.Context) (*SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*SessionResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SelectDate(ctx context.Context, sessionID, date string) (*SessionResponse, error)
	ChangeMonth(ctx context.Context, sessionID string, offset int) (*SessionResponse, error)
	SelectFloor(ctx context.Context, sessionID, floor string) (*SessionResponse, error)
	ToggleRoom(ctx context.Context, sessionID, room string) (*SessionResponse, error)
	SelectTimeSlot(ctx context.Context, sessionID, slot string) (*SessionResponse, error)
	SetParticipantEmail(ctx context.Context, sessionID, email string) (*SessionResponse, error)
	AddParticipant(ctx context.Context, sessionID, email string) (*SessionResponse, error)
	RemoveParticipant(ctx context.Context, sessionID, email string) (*SessionResponse, error)
	Submit(ctx context.Context, sessionID string) (*SessionResponse, error)
	Confirm(ctx context.Context, sessionID string) (*SessionResponse, error)
	Cancel(ctx context.Context, sessionID string) (*SessionResponse, error)
	Dismiss(ctx context.Context, sessionID string) (*SessionResponse, error)
	DismissAlert(ctx context.Context, sessionID string) (*SessionResponse, error)
	PressDialogButton(ctx context.Context, sessionID, dialog string, index int) (*SessionResponse, error)
	CloseDialog(ctx context.Context, sessionID, dialog string) (*SessionResponse, error)
}

// Publisher pushes session updates to watchers
type Publisher interface {
	Publish(sessionID uuid.UUID, typ websocket.MessageType, state any, text string)
}

// Options configures the session service
type Options struct {
	Coordinator booking.Options
	SessionTTL  time.Duration
	Publisher   Publisher
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
}

type session struct {
	id       uuid.UUID
	coord    *booking.Coordinator
	lastSeen time.Time
}

// SessionService implements BookingService with one in-memory Coordinator per session
type SessionService struct {
	store    booking.Store
	opts     Options
	now      func() time.Time
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

var _ BookingService = (*SessionService)(nil)

// NewBookingService creates a new BookingService backed by store
func NewBookingService(store booking.Store, opts Options) *SessionService {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	now := opts.Coordinator.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		store:    store,
		opts:     opts,
		now:      now,
		sessions: make(map[uuid.UUID]*session),
	}
}

func (s *SessionService) Catalog(ctx context.Context) *Catalog {
	c := &Catalog{
		TimeSlots:    catalog.TimeSlots(),
		DefaultFloor: s.opts.Coordinator.DefaultFloor,
	}
	if !catalog.HasFloor(c.DefaultFloor) {
		c.DefaultFloor = catalog.DefaultFloor
	}
	for _, f := range catalog.Floors() {
		rooms, _ := catalog.Rooms(f)
		c.Floors = append(c.Floors, Floor{Name: f, Rooms: rooms})
	}
	return c
}

func (s *SessionService) CreateSession(ctx context.Context) (*SessionResponse, error) {
	id := uuid.New()
	logger := s.opts.Logger.WithSession(id.String())

	coordOpts := s.opts.Coordinator
	coordOpts.Logger = logger
	coordOpts.OnConfirm = s.onConfirm(id)

	sess := &session{
		id:       id,
		coord:    booking.NewCoordinator(s.store, coordOpts),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.opts.Metrics.SetSessions(n)
	logger.Debug("booking session created")
	return s.respond(sess), nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.respond(sess), nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sess.id)
	n := len(s.sessions)
	s.mu.Unlock()

	s.opts.Metrics.SetSessions(n)
	s.publish(sess.id, websocket.MessageTypeSessionClosed, nil, "")
	return nil
}

func (s *SessionService) SelectDate(ctx context.Context, sessionID, date string) (*SessionResponse, error) {
	loc := s.opts.Coordinator.Location
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.SelectDate(d)
		return nil
	})
}

func (s *SessionService) ChangeMonth(ctx context.Context, sessionID string, offset int) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		return c.ChangeMonth(offset)
	})
}

func (s *SessionService) SelectFloor(ctx context.Context, sessionID, floor string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		return c.SelectFloor(floor)
	})
}

func (s *SessionService) ToggleRoom(ctx context.Context, sessionID, room string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		return c.ToggleRoom(room)
	})
}

func (s *SessionService) SelectTimeSlot(ctx context.Context, sessionID, slot string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		return c.SelectTimeSlot(slot)
	})
}

func (s *SessionService) SetParticipantEmail(ctx context.Context, sessionID, email string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.SetParticipantEmail(email)
		return nil
	})
}

func (s *SessionService) AddParticipant(ctx context.Context, sessionID, email string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.AddParticipant(email)
		return nil
	})
}

func (s *SessionService) RemoveParticipant(ctx context.Context, sessionID, email string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.RemoveParticipant(email)
		return nil
	})
}

// Submit never fails on validation; the flags are in the returned state
func (s *SessionService) Submit(ctx context.Context, sessionID string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		errs := c.Submit()
		s.opts.Metrics.ObserveSubmit(!errs.Any())
		return nil
	})
}

// Confirm returns the session state even when the insert fails so the
// caller can show the alert
func (s *SessionService) Confirm(ctx context.Context, sessionID string) (*SessionResponse, error) {
	return s.applyKeepState(sessionID, func(c *booking.Coordinator) error {
		_, err := c.Confirm(ctx)
		return err
	})
}

func (s *SessionService) Cancel(ctx context.Context, sessionID string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.Cancel()
		return nil
	})
}

func (s *SessionService) Dismiss(ctx context.Context, sessionID string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.Dismiss()
		return nil
	})
}

func (s *SessionService) DismissAlert(ctx context.Context, sessionID string) (*SessionResponse, error) {
	return s.apply(sessionID, func(c *booking.Coordinator) error {
		c.DismissAlert()
		return nil
	})
}

func (s *SessionService) PressDialogButton(ctx context.Context, sessionID, dialog string, index int) (*SessionResponse, error) {
	return s.applyKeepState(sessionID, func(c *booking.Coordinator) error {
		return c.PressDialogButton(ctx, booking.DialogName(dialog), index)
	})
}

func (s *SessionService) CloseDialog(ctx context.Context, sessionID, dialog string) (*SessionResponse, error) {
	return s.applyKeepState(sessionID, func(c *booking.Coordinator) error {
		return c.CloseDialog(ctx, booking.DialogName(dialog))
	})
}

// apply runs fn and publishes the new state; on error no state is returned
func (s *SessionService) apply(sessionID string, fn func(c *booking.Coordinator) error) (*SessionResponse, error) {
	resp, err := s.applyKeepState(sessionID, fn)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SessionService) applyKeepState(sessionID string, fn func(c *booking.Coordinator) error) (*SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess.coord); err != nil {
		return s.respond(sess), err
	}
	resp := s.respond(sess)
	s.publish(sess.id, websocket.MessageTypeState, resp.State, "")
	return resp, nil
}

func (s *SessionService) onConfirm(id uuid.UUID) func([]booking.InsertedRow, error, time.Duration) {
	return func(rows []booking.InsertedRow, err error, took time.Duration) {
		switch {
		case err == nil:
			s.opts.Metrics.ObserveConfirm(metrics.OutcomeSuccess, took)
			s.publish(id, websocket.MessageTypeBookingCreated, nil, "")
		case errors.Is(err, booking.ErrConfirmInFlight):
			s.opts.Metrics.ObserveConfirm(metrics.OutcomeInFlight, took)
		case booking.IsRejected(err):
			s.opts.Metrics.ObserveConfirm(metrics.OutcomeRejected, took)
			s.publish(id, websocket.MessageTypeBookingFailed, nil, booking.AlertMessage(err))
		default:
			s.opts.Metrics.ObserveConfirm(metrics.OutcomeUnexpected, took)
			s.publish(id, websocket.MessageTypeBookingFailed, nil, booking.AlertMessage(err))
		}
	}
}

func (s *SessionService) lookup(sessionID string) (*session, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	sess.lastSeen = s.now()
	return sess, nil
}

func (s *SessionService) respond(sess *session) *SessionResponse {
	return &SessionResponse{
		SessionID: sess.id.String(),
		State:     sess.coord.View(),
	}
}

func (s *SessionService) publish(id uuid.UUID, typ websocket.MessageType, state any, text string) {
	if s.opts.Publisher != nil {
		s.opts.Publisher.Publish(id, typ, state, text)
	}
}

// Sweep drops sessions idle for longer than the configured TTL and
// returns how many were removed
func (s *SessionService) Sweep() int {
	if s.opts.SessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.SessionTTL)

	s.mu.Lock()
	var expired []uuid.UUID
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, id := range expired {
		s.publish(id, websocket.MessageTypeSessionClosed, nil, "")
	}
	if len(expired) > 0 {
		s.opts.Metrics.SetSessions(n)
		s.opts.Logger.Info("expired idle booking sessions", "count", len(expired), "remaining", n)
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
