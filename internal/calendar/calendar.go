// Package calendar builds the month grid shown by the booking form.
//
// Weeks always start on Sunday regardless of locale, and days are compared
// by their (day, month, year) triple so the result does not depend on the
// time zone of the values passed in.
package calendar

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// Locale used for month and weekday names
const Locale = monday.LocaleDaDK

// Cell is one square of the month grid. Blank cells pad the first week.
type Cell struct {
	Blank    bool       `json:"blank"`
	Day      int        `json:"day,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Selected bool       `json:"selected"`
}

// Month is the rendered grid for one month
type Month struct {
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	Weekdays []string `json:"weekdays"`
	Cells    []Cell   `json:"cells"`
}

// Grid lays out the month containing current and marks selected
func Grid(selected, current time.Time) Month {
	first := FirstOfMonth(current)
	days := DaysIn(first)
	lead := int(first.Weekday())

	cells := make([]Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for d := 1; d <= days; d++ {
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, first.Location())
		cells = append(cells, Cell{
			Day:      d,
			Date:     &date,
			Selected: SameDay(date, selected),
		})
	}

	return Month{
		Title:    MonthName(first) + " " + first.Format("2006"),
		Year:     first.Year(),
		Month:    int(first.Month()),
		Weekdays: WeekdayHeader(),
		Cells:    cells,
	}
}

// FirstOfMonth returns midnight on the first day of t's month
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Shift moves month by offset months; year rollover is handled by normalisation
func Shift(month time.Time, offset int) time.Time {
	return time.Date(month.Year(), month.Month()+time.Month(offset), 1, 0, 0, 0, 0, month.Location())
}

// DaysIn returns the number of days in t's month
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// SameDay compares calendar dates, ignoring clock time and location
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return a.Day() == b.Day() && a.Month() == b.Month() && a.Year() == b.Year()
}

// MonthName returns the localized, lower-case month name
func MonthName(t time.Time) string {
	return strings.ToLower(monday.Format(t, "January", Locale))
}

// WeekdayName returns the localized, lower-case weekday name
func WeekdayName(t time.Time) string {
	return strings.ToLower(monday.Format(t, "Monday", Locale))
}

// WeekdayHeader returns two-letter English day names starting on Sunday
func WeekdayHeader() []string {
	names := make([]string, 7)
	for i := range names {
		names[i] = time.Weekday(i).String()[:2]
	}
	return names
}
