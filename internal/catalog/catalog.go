package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownFloor    = errors.New("unknown floor")
	ErrUnknownRoom     = errors.New("unknown room")
	ErrUnknownTimeSlot = errors.New("unknown time slot")
	ErrMalformedSlot   = errors.New("malformed time slot")
)

// DefaultFloor is the floor a new booking form opens on
const DefaultFloor = "3 sal"

var floors = []string{"1 sal", "2 sal", "3 sal", "4 sal"}

var rooms = map[string][]string{
	"1 sal": {"1.1", "1.2", "1.3"},
	"2 sal": {"2.1", "2.2", "2.3"},
	// Existing rows store this room as "3.3 " with a trailing space.
	"3 sal": {"3.1", "3.2", "3.3"},
	"4 sal": {"4.1", "4.2", "4.3"},
}

// The gap between 13:45 and 15:30 is the lunch break; the last slot crosses midnight.
var timeSlots = []string{
	"08:00-09:15", "09:30-10:45", "11:00-12:15", "12:30-13:45",
	"15:30-16:45", "17:00-18:15", "18:30-19:45", "20:00-21:15", "23:00-00:15",
}

// Floors returns the building floors in display order
func Floors() []string {
	return append([]string(nil), floors...)
}

// Rooms returns the rooms on a floor
func Rooms(floor string) ([]string, error) {
	r, ok := rooms[floor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFloor, floor)
	}
	return append([]string(nil), r...), nil
}

// TimeSlots returns the bookable intervals in display order
func TimeSlots() []string {
	return append([]string(nil), timeSlots...)
}

// HasFloor reports whether floor is part of the building
func HasFloor(floor string) bool {
	_, ok := rooms[floor]
	return ok
}

// FloorHasRoom reports whether room is on floor
func FloorHasRoom(floor, room string) bool {
	for _, r := range rooms[floor] {
		if r == room {
			return true
		}
	}
	return false
}

// HasTimeSlot reports whether slot is one of the bookable intervals
func HasTimeSlot(slot string) bool {
	for _, s := range timeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ClockTime is a time of day with minute precision
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Slot is a parsed "HH:MM-HH:MM" interval
type Slot struct {
	Start ClockTime
	End   ClockTime
}

// CrossesMidnight reports whether the slot ends on the following day
func (s Slot) CrossesMidnight() bool {
	return s.End.Hour*60+s.End.Minute <= s.Start.Hour*60+s.Start.Minute
}

// ParseSlot parses a "HH:MM-HH:MM" interval
func ParseSlot(slot string) (Slot, error) {
	start, end, ok := strings.Cut(slot, "-")
	if !ok {
		return Slot{}, fmt.Errorf("%w: %q", ErrMalformedSlot, slot)
	}
	s, err := parseClock(start)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q: %v", ErrMalformedSlot, slot, err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q: %v", ErrMalformedSlot, slot, err)
	}
	return Slot{Start: s, End: e}, nil
}

func parseClock(v string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("missing ':' in %q", v)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("bad hour in %q", v)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("bad minute in %q", v)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}
