package calendar

import (
	"remindcal/internal/model"
)

// Dated is anything pinned to a single calendar day.
type Dated interface {
	Day() model.Date
}

// OnDate returns the items whose day equals d, in their original order.
// The input slice is never modified.
func OnDate[T Dated](items []T, d model.Date) []T {
	out := make([]T, 0)
	for _, it := range items {
		if it.Day() == d {
			out = append(out, it)
		}
	}
	return out
}

// InWeek returns the items falling in the seven days starting at weekStart.
func InWeek[T Dated](items []T, weekStart model.Date) []T {
	weekEnd := weekStart.AddDays(7)
	out := make([]T, 0)
	for _, it := range items {
		d := it.Day()
		if !d.Before(weekStart) && d.Before(weekEnd) {
			out = append(out, it)
		}
	}
	return out
}
