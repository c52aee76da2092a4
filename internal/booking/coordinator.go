package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NicklasAaStadler/booking/internal/calendar"
	"github.com/NicklasAaStadler/booking/internal/catalog"
	"github.com/NicklasAaStadler/booking/pkg/logging"
)

// EndsAtLayout matches the ISO-8601 form the session table expects
const EndsAtLayout = "2006-01-02T15:04:05.000Z"

// Options configures a Coordinator
type Options struct {
	Location      *time.Location
	DefaultFloor  string
	BookedBy      int
	InsertTimeout time.Duration
	Now           func() time.Time
	Logger        *logging.Logger

	// OnConfirm, when set, is called after every confirm attempt that got
	// past the dialog check, outside the coordinator lock. took is zero
	// when no insert was attempted.
	OnConfirm func(rows []InsertedRow, err error, took time.Duration)
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.DefaultFloor == "" || !catalog.HasFloor(o.DefaultFloor) {
		o.DefaultFloor = catalog.DefaultFloor
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Coordinator owns the state of one booking form and applies every
// transition to it. It is safe for concurrent use.
type Coordinator struct {
	store Store
	opts  Options

	mu       sync.Mutex
	sel      Selection
	errs     ValidationErrors
	dialogs  DialogState
	alert    string
	inFlight bool
	inserted []InsertedRow
}

// NewCoordinator creates a form with today's date selected and no room or slot
func NewCoordinator(store Store, opts Options) *Coordinator {
	opts = opts.withDefaults()
	today := dateOnly(opts.Now(), opts.Location)
	return &Coordinator{
		store: store,
		opts:  opts,
		sel: Selection{
			Date:         today,
			CurrentMonth: calendar.FirstOfMonth(today),
			Floor:        opts.DefaultFloor,
			Participants: []string{},
		},
	}
}

// SelectDate picks the booking day; the clock part of d is dropped
func (c *Coordinator) SelectDate(d time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Date = dateOnly(d, c.opts.Location)
}

// ChangeMonth moves the visible calendar month by one in either direction
func (c *Coordinator) ChangeMonth(offset int) error {
	if offset != 1 && offset != -1 {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.CurrentMonth = calendar.Shift(c.sel.CurrentMonth, offset)
	return nil
}

// SelectFloor switches floor and always clears the room
func (c *Coordinator) SelectFloor(floor string) error {
	if !catalog.HasFloor(floor) {
		return fmt.Errorf("%w: %q", ErrUnknownFloor, floor)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Floor = floor
	c.sel.Room = nil
	return nil
}

// ToggleRoom selects room, or deselects it when it is already selected
func (c *Coordinator) ToggleRoom(room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !catalog.FloorHasRoom(c.sel.Floor, room) {
		return fmt.Errorf("%w: %q on %q", ErrUnknownRoom, room, c.sel.Floor)
	}
	if c.sel.Room != nil && *c.sel.Room == room {
		c.sel.Room = nil
		return nil
	}
	c.sel.Room = &room
	c.errs.Room = false
	return nil
}

// SelectTimeSlot makes slot the active interval
func (c *Coordinator) SelectTimeSlot(slot string) error {
	if !catalog.HasTimeSlot(slot) {
		return fmt.Errorf("%w: %q", ErrUnknownTimeSlot, slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.TimeSlot = &slot
	c.errs.TimeSlot = false
	return nil
}

// SetParticipantEmail updates the pending participant input
func (c *Coordinator) SetParticipantEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.ParticipantEmail = email
}

// AddParticipant appends email, falling back to the pending input when email
// is empty. Empty or duplicate values are ignored. It reports whether the
// list changed.
func (c *Coordinator) AddParticipant(email string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if email == "" {
		email = c.sel.ParticipantEmail
	}
	if email == "" || c.hasParticipantLocked(email) {
		return false
	}
	c.sel.Participants = append(c.sel.Participants, email)
	c.sel.ParticipantEmail = ""
	return true
}

// RemoveParticipant drops email from the list
func (c *Coordinator) RemoveParticipant(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]string, 0, len(c.sel.Participants))
	for _, p := range c.sel.Participants {
		if p != email {
			kept = append(kept, p)
		}
	}
	c.sel.Participants = kept
}

func (c *Coordinator) hasParticipantLocked(email string) bool {
	for _, p := range c.sel.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Submit validates the form and opens the confirm dialog when it passes
func (c *Coordinator) Submit() ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = ValidationErrors{
		Room:     c.sel.Room == nil,
		TimeSlot: c.sel.TimeSlot == nil,
	}
	if c.errs.Any() {
		return c.errs
	}
	c.dialogs.ConfirmOpen = true
	return c.errs
}

// Cancel closes the confirm dialog
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogs.ConfirmOpen = false
	c.alert = ""
}

// Dismiss closes the success dialog
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogs.SuccessOpen = false
}

// DismissAlert acknowledges the alert from a failed confirm
func (c *Coordinator) DismissAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = ""
}

// Confirm inserts the booking. On success the confirm dialog closes and the
// success dialog opens; on failure an alert is recorded and nothing else
// changes. Only one insert may be outstanding at a time.
func (c *Coordinator) Confirm(ctx context.Context) ([]InsertedRow, error) {
	rows, took, err := c.confirm(ctx)
	if c.opts.OnConfirm != nil && !errors.Is(err, ErrNotConfirming) {
		c.opts.OnConfirm(rows, err, took)
	}
	return rows, err
}

// confirm reports how long the insert took, or zero when none was attempted
func (c *Coordinator) confirm(ctx context.Context) ([]InsertedRow, time.Duration, error) {
	c.mu.Lock()
	if !c.dialogs.ConfirmOpen {
		c.mu.Unlock()
		return nil, 0, ErrNotConfirming
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, 0, ErrConfirmInFlight
	}
	rec, err := c.recordLocked()
	if err != nil {
		c.alert = AlertMessage(err)
		c.mu.Unlock()
		c.opts.Logger.Error("unexpected error building booking", "error", err)
		return nil, 0, err
	}
	c.inFlight = true
	c.mu.Unlock()

	if c.opts.InsertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.InsertTimeout)
		defer cancel()
	}
	start := time.Now()
	rows, err := c.store.InsertBooking(ctx, rec)
	took := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.alert = AlertMessage(err)
		if IsRejected(err) {
			c.opts.Logger.Error("error creating booking", "error", err, "room_id", rec.RoomID)
		} else {
			c.opts.Logger.Error("unexpected error creating booking", "error", err, "room_id", rec.RoomID)
		}
		return nil, took, err
	}

	c.alert = ""
	c.inserted = rows
	c.dialogs.ConfirmOpen = false
	c.dialogs.SuccessOpen = true
	c.opts.Logger.Info("booking created successfully", "room_id", rec.RoomID, "ends_at", rec.EndsAt, "rows", len(rows))
	return rows, took, nil
}

func (c *Coordinator) recordLocked() (Record, error) {
	if c.sel.Room == nil || c.sel.TimeSlot == nil {
		return Record{}, fmt.Errorf("incomplete selection: room and time slot are required")
	}
	endsAt, err := EndTime(c.sel.Date, *c.sel.TimeSlot, c.opts.Location)
	if err != nil {
		return Record{}, err
	}
	participants := append([]string{}, c.sel.Participants...)
	return Record{
		RoomID:             *c.sel.Room,
		EndsAt:             FormatEndsAt(endsAt),
		ParticipationCount: len(participants),
		BookedBy:           c.opts.BookedBy,
		Participants:       participants,
	}, nil
}

// EndTime combines the calendar day of date with the end of slot in loc.
// A slot that crosses midnight still ends on date itself.
func EndTime(date time.Time, slot string, loc *time.Location) (time.Time, error) {
	s, err := catalog.ParseSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(date.Year(), date.Month(), date.Day(), s.End.Hour, s.End.Minute, 0, 0, loc), nil
}

// FormatEndsAt renders t as a UTC instant with millisecond precision
func FormatEndsAt(t time.Time) string {
	return t.UTC().Format(EndsAtLayout)
}

// dateOnly is the calendar day of t as seen in loc
func dateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Selection returns a copy of the current selection
func (c *Coordinator) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectionLocked()
}

func (c *Coordinator) selectionLocked() Selection {
	s := c.sel
	s.Participants = append([]string{}, c.sel.Participants...)
	if c.sel.Room != nil {
		r := *c.sel.Room
		s.Room = &r
	}
	if c.sel.TimeSlot != nil {
		ts := *c.sel.TimeSlot
		s.TimeSlot = &ts
	}
	return s
}

// ValidationErrors returns the current validation flags
func (c *Coordinator) ValidationErrors() ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// Dialogs returns the dialog visibility flags
func (c *Coordinator) Dialogs() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialogs
}

// Alert returns the message of the last failed confirm, if any
func (c *Coordinator) Alert() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

// Phase derives the lifecycle phase from the dialog flags
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return phaseOf(c.dialogs)
}

func phaseOf(d DialogState) Phase {
	switch {
	case d.SuccessOpen:
		return PhaseSucceeded
	case d.ConfirmOpen:
		return PhaseConfirming
	default:
		return PhaseIdle
	}
}
