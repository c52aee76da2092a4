package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/NicklasAaStadler/booking/internal/calendar"
	"github.com/NicklasAaStadler/booking/internal/catalog"
)

// DialogName identifies one of the two modal dialogs
type DialogName string

const (
	DialogConfirm DialogName = "confirm"
	DialogSuccess DialogName = "success"
)

// Action is what a dialog button does when pressed
type Action string

const (
	ActionCancel  Action = "cancel"
	ActionConfirm Action = "confirm"
	ActionDismiss Action = "dismiss"
)

const successMessage = "Din bookning blev gennemført!"

// Button is one dialog button
type Button struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
}

// Dialog is a modal surface. A closed dialog has no message or buttons.
type Dialog struct {
	Open    bool     `json:"open"`
	Message string   `json:"message,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
	OnClose Action   `json:"onClose,omitempty"`
}

// FloorTab is one floor tab of the room selector
type FloorTab struct {
	Floor  string `json:"floor"`
	Active bool   `json:"active"`
}

// RoomToggle is one room button on the active floor
type RoomToggle struct {
	Room     string `json:"room"`
	Selected bool   `json:"selected"`
}

// RoomSelector is the floor tabs plus the rooms of the active floor
type RoomSelector struct {
	Floors   []FloorTab   `json:"floors"`
	Rooms    []RoomToggle `json:"rooms"`
	HasError bool         `json:"hasError"`
}

// SlotOption is one time slot button
type SlotOption struct {
	Slot     string `json:"slot"`
	Selected bool   `json:"selected"`
}

// TimeSlotSelector lists every slot with the active one marked
type TimeSlotSelector struct {
	Slots    []SlotOption `json:"slots"`
	HasError bool         `json:"hasError"`
}

// ParticipantsSection is the pending input and the added emails
type ParticipantsSection struct {
	Email        string   `json:"email"`
	Participants []string `json:"participants"`
}

// Preview summarises the current selection
type Preview struct {
	Date                string   `json:"date"`
	Room                *string  `json:"room"`
	TimeSlot            *string  `json:"timeSlot"`
	Participants        []string `json:"participants"`
	HasValidationErrors bool     `json:"hasValidationErrors"`
}

// View is the complete render state of one booking form
type View struct {
	Phase         Phase               `json:"phase"`
	Calendar      calendar.Month      `json:"calendar"`
	RoomSelector  RoomSelector        `json:"roomSelector"`
	TimeSlots     TimeSlotSelector    `json:"timeSlots"`
	Participants  ParticipantsSection `json:"participants"`
	Preview       Preview             `json:"preview"`
	Validation    ValidationErrors    `json:"validation"`
	ConfirmDialog Dialog              `json:"confirmDialog"`
	SuccessDialog Dialog              `json:"successDialog"`
	Alert         string              `json:"alert,omitempty"`
	Submitting    bool                `json:"submitting"`
	LastBooking   []InsertedRow       `json:"lastBooking,omitempty"`
}

// View renders the whole form from a consistent snapshot
func (c *Coordinator) View() View {
	c.mu.Lock()
	sel := c.selectionLocked()
	errs := c.errs
	dialogs := c.dialogs
	alert := c.alert
	inFlight := c.inFlight
	inserted := append([]InsertedRow(nil), c.inserted...)
	c.mu.Unlock()

	return View{
		Phase:         phaseOf(dialogs),
		Calendar:      calendar.Grid(sel.Date, sel.CurrentMonth),
		RoomSelector:  roomSelectorView(sel, errs),
		TimeSlots:     timeSlotView(sel, errs),
		Participants:  ParticipantsSection{Email: sel.ParticipantEmail, Participants: sel.Participants},
		Preview:       previewView(sel, errs),
		Validation:    errs,
		ConfirmDialog: confirmDialog(sel, dialogs.ConfirmOpen),
		SuccessDialog: successDialog(dialogs.SuccessOpen),
		Alert:         alert,
		Submitting:    inFlight,
		LastBooking:   inserted,
	}
}

func roomSelectorView(sel Selection, errs ValidationErrors) RoomSelector {
	v := RoomSelector{HasError: errs.Room}
	for _, f := range catalog.Floors() {
		v.Floors = append(v.Floors, FloorTab{Floor: f, Active: f == sel.Floor})
	}
	rooms, _ := catalog.Rooms(sel.Floor)
	for _, r := range rooms {
		v.Rooms = append(v.Rooms, RoomToggle{Room: r, Selected: sel.Room != nil && *sel.Room == r})
	}
	return v
}

func timeSlotView(sel Selection, errs ValidationErrors) TimeSlotSelector {
	v := TimeSlotSelector{HasError: errs.TimeSlot}
	for _, s := range catalog.TimeSlots() {
		v.Slots = append(v.Slots, SlotOption{Slot: s, Selected: sel.TimeSlot != nil && *sel.TimeSlot == s})
	}
	return v
}

func previewView(sel Selection, errs ValidationErrors) Preview {
	return Preview{
		Date:                PreviewDate(sel.Date),
		Room:                sel.Room,
		TimeSlot:            sel.TimeSlot,
		Participants:        sel.Participants,
		HasValidationErrors: errs.Any(),
	}
}

// PreviewDate formats d as "<weekday> d. D/M/YYYY" in Danish
func PreviewDate(d time.Time) string {
	return fmt.Sprintf("%s d. %d/%d/%d", calendar.WeekdayName(d), d.Day(), int(d.Month()), d.Year())
}

// ConfirmMessage is the text of the confirm dialog for sel
func ConfirmMessage(sel Selection) string {
	return fmt.Sprintf("Bekræft venligst din bookning af %s, %s kl. %s",
		deref(sel.Room), PreviewDate(sel.Date), deref(sel.TimeSlot))
}

func confirmDialog(sel Selection, open bool) Dialog {
	if !open {
		return Dialog{}
	}
	return Dialog{
		Open:    true,
		Message: ConfirmMessage(sel),
		Buttons: []Button{
			{Label: "Annuller", Action: ActionCancel},
			{Label: "Bekræft", Action: ActionConfirm},
		},
		OnClose: ActionCancel,
	}
}

func successDialog(open bool) Dialog {
	if !open {
		return Dialog{}
	}
	return Dialog{
		Open:    true,
		Message: successMessage,
		Buttons: []Button{
			{Label: "Se alle bookninger", Action: ActionDismiss},
			{Label: "Tilbage til dashboard", Action: ActionDismiss},
		},
		OnClose: ActionDismiss,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PressDialogButton runs the action of the button at index on an open dialog
func (c *Coordinator) PressDialogButton(ctx context.Context, name DialogName, index int) error {
	d, err := c.dialog(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(d.Buttons) {
		return fmt.Errorf("%w: %s[%d]", ErrUnknownButton, name, index)
	}
	return c.run(ctx, d.Buttons[index].Action)
}

// CloseDialog runs the close action of an open dialog
func (c *Coordinator) CloseDialog(ctx context.Context, name DialogName) error {
	d, err := c.dialog(name)
	if err != nil {
		return err
	}
	return c.run(ctx, d.OnClose)
}

func (c *Coordinator) dialog(name DialogName) (Dialog, error) {
	c.mu.Lock()
	sel := c.selectionLocked()
	dialogs := c.dialogs
	c.mu.Unlock()

	var d Dialog
	switch name {
	case DialogConfirm:
		d = confirmDialog(sel, dialogs.ConfirmOpen)
	case DialogSuccess:
		d = successDialog(dialogs.SuccessOpen)
	default:
		return Dialog{}, fmt.Errorf("%w: %q", ErrUnknownDialog, name)
	}
	if !d.Open {
		return Dialog{}, fmt.Errorf("%w: %s", ErrDialogClosed, name)
	}
	return d, nil
}

func (c *Coordinator) run(ctx context.Context, a Action) error {
	switch a {
	case ActionCancel:
		c.Cancel()
	case ActionDismiss:
		c.Dismiss()
	case ActionConfirm:
		_, err := c.Confirm(ctx)
		return err
	}
	return nil
}
