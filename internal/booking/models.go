package booking

import (
	"context"
	"time"
)

// Phase represents where a session is in the submit/confirm lifecycle
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConfirming Phase = "confirming"
	PhaseSucceeded  Phase = "succeeded"
)

// Selection represents everything the user has picked on the form
type Selection struct {
	Date             time.Time `json:"date"`
	CurrentMonth     time.Time `json:"currentMonth"`
	Floor            string    `json:"floor"`
	Room             *string   `json:"room"`
	TimeSlot         *string   `json:"timeSlot"`
	ParticipantEmail string    `json:"participantEmail"`
	Participants     []string  `json:"participants"`
}

// ValidationErrors flags the required fields that were missing at submit time
type ValidationErrors struct {
	Room     bool `json:"room"`
	TimeSlot bool `json:"timeSlot"`
}

// Any reports whether at least one field failed validation
func (v ValidationErrors) Any() bool {
	return v.Room || v.TimeSlot
}

// DialogState holds the visibility of the two modal dialogs.
// Nothing keeps both from being open at once.
type DialogState struct {
	ConfirmOpen bool `json:"confirmOpen"`
	SuccessOpen bool `json:"successOpen"`
}

// Record is the row sent to the remote session table.
//
// It carries no start time: only the end of the slot is transmitted.
type Record struct {
	RoomID             string   `json:"room_id"`
	EndsAt             string   `json:"ends_at"`
	ParticipationCount int      `json:"participation_"`
	BookedBy           int      `json:"booked_by"`
	Participants       []string `json:"participants"`
}

// InsertedRow is a row echoed back by the remote store after an insert
type InsertedRow struct {
	ID                 int64     `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	RoomID             string    `json:"room_id"`
	EndsAt             time.Time `json:"ends_at"`
	ParticipationCount int       `json:"participation_"`
	BookedBy           int       `json:"booked_by"`
	Participants       []string  `json:"participants"`
}

// Store inserts booking records into the remote table
type Store interface {
	InsertBooking(ctx context.Context, rec Record) ([]InsertedRow, error)
}

// StoreFunc adapts a function to the Store interface
type StoreFunc func(ctx context.Context, rec Record) ([]InsertedRow, error)

func (f StoreFunc) InsertBooking(ctx context.Context, rec Record) ([]InsertedRow, error) {
	return f(ctx, rec)
}
