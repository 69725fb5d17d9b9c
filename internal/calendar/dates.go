// Package calendar holds the pure date arithmetic behind the month and week
// views, the projection of events and reminders onto days, and the assembly
// of display grids. Nothing here reads the wall clock; callers pass now.
package calendar

import (
	"time"
)

// DaysInMonth returns 28..31, computed as day 0 of the following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOfMonth returns the weekday of the 1st as 0..6 with Sunday = 0.
func FirstWeekdayOfMonth(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// LeadingBlanks is the number of empty cells before the 1st in a grid whose
// rows begin on weekStart.
func LeadingBlanks(year int, month time.Month, weekStart time.Weekday) int {
	return (FirstWeekdayOfMonth(year, month) - int(weekStart) + 7) % 7
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsToday reports whether t falls on the same calendar day as now.
func IsToday(t, now time.Time) bool {
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

// IsPastDate reports whether t lies before the start of today. Today itself
// is never past.
func IsPastDate(t, now time.Time) bool {
	return t.Before(StartOfDay(now))
}

// WeekBoundsContaining returns the Sunday and Saturday (both at midnight) of
// the week containing t.
func WeekBoundsContaining(t time.Time) (start, end time.Time) {
	return WeekBounds(t, time.Sunday)
}

// WeekBounds is WeekBoundsContaining for weeks starting on weekStart.
func WeekBounds(t time.Time, weekStart time.Weekday) (start, end time.Time) {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// MonthName returns the English month name, or "" outside January..December
// where time.Month.String would print "%!Month(13)".
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return m.String()
}
