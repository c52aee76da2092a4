package booking

import (
	"errors"

	"github.com/NicklasAaStadler/booking/internal/catalog"
)

var (
	ErrUnknownFloor    = catalog.ErrUnknownFloor
	ErrUnknownRoom     = catalog.ErrUnknownRoom
	ErrUnknownTimeSlot = catalog.ErrUnknownTimeSlot
	ErrUnknownDialog   = errors.New("unknown dialog")
	ErrUnknownButton   = errors.New("unknown dialog button")
	ErrDialogClosed    = errors.New("dialog is not open")
	ErrNotConfirming   = errors.New("no booking is awaiting confirmation")
	ErrConfirmInFlight = errors.New("booking is already being submitted")
	ErrInvalidOffset   = errors.New("month offset must be -1 or 1")
)

const (
	rejectedAlertPrefix   = "Der opstod en fejl ved oprettelse af bookingen: "
	unexpectedAlertPrefix = "Der opstod en uventet fejl: "
)

// RejectedError is returned when the remote store refuses an insert
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Code == "" {
		return "insert rejected: " + e.Message
	}
	return "insert rejected (" + e.Code + "): " + e.Message
}

// IsRejected reports whether err is a remote rejection
func IsRejected(err error) bool {
	var rej *RejectedError
	return errors.As(err, &rej)
}

// AlertMessage is the text shown to the user when a confirm attempt fails
func AlertMessage(err error) string {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rejectedAlertPrefix + rej.Message
	}
	return unexpectedAlertPrefix + err.Error()
}
