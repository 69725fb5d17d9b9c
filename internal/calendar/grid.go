package calendar

import (
	"fmt"
	"time"

	"remindcal/internal/model"
)

// A cell shows at most InlineEvents events and InlineReminders reminders once
// its combined count exceeds DisplayCap; the rest collapse into "+N more".
const (
	InlineEvents    = 2
	InlineReminders = 2
	DisplayCap      = InlineEvents + InlineReminders
)

type View string

const (
	Monthly View = "monthly"
	Weekly  View = "weekly"
)

// ParseView falls back to Monthly for unknown input.
func ParseView(s string) View {
	if View(s) == Weekly {
		return Weekly
	}
	return Monthly
}

// Cell is one square of a rendered grid.
type Cell struct {
	Date  model.Date `json:"date"`
	Blank bool       `json:"blank,omitempty"`
	Today bool       `json:"today,omitempty"`
	Past  bool       `json:"past,omitempty"`

	Events    []model.Event    `json:"events"`
	Reminders []model.Reminder `json:"reminders"`

	TotalEvents    int    `json:"total_events"`
	TotalReminders int    `json:"total_reminders"`
	Overflow       int    `json:"overflow"`
	More           string `json:"more,omitempty"`
}

// Grid is a month or week worth of cells, row-major, seven per row.
type Grid struct {
	View     View       `json:"view"`
	Title    string     `json:"title"`
	Anchor   model.Date `json:"anchor"`
	Weekdays []string   `json:"weekdays"`
	Cells    []Cell     `json:"cells"`
}

// Options carries what a grid needs besides the data.
type Options struct {
	Now       time.Time
	WeekStart time.Weekday
}

// Truncate applies the inline display cap to a day's items. The returned
// overflow is total minus what is actually shown. That equals total-4 when
// both categories have at least two items; when one category is short the
// cap leaves its slots empty and the count stays exact instead of
// under-reporting.
func Truncate(events []model.Event, reminders []model.Reminder) ([]model.Event, []model.Reminder, int) {
	total := len(events) + len(reminders)
	if total <= DisplayCap {
		return events, reminders, 0
	}
	if len(events) > InlineEvents {
		events = events[:InlineEvents]
	}
	if len(reminders) > InlineReminders {
		reminders = reminders[:InlineReminders]
	}
	return events, reminders, total - len(events) - len(reminders)
}

// OverflowLabel renders the summary marker, or "" when nothing is hidden.
func OverflowLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", n)
}

func buildCell(d model.Date, events []model.Event, reminders []model.Reminder, now time.Time) Cell {
	dayEvents := OnDate(events, d)
	dayReminders := OnDate(reminders, d)
	shownEvents, shownReminders, overflow := Truncate(dayEvents, dayReminders)

	start := d.In(now.Location())
	return Cell{
		Date:           d,
		Today:          IsToday(start, now),
		Past:           IsPastDate(start, now),
		Events:         shownEvents,
		Reminders:      shownReminders,
		TotalEvents:    len(dayEvents),
		TotalReminders: len(dayReminders),
		Overflow:       overflow,
		More:           OverflowLabel(overflow),
	}
}

// MonthGrid lays out a whole month with leading blanks up to the first day.
func MonthGrid(year int, month time.Month, events []model.Event, reminders []model.Reminder, opts Options) Grid {
	blanks := LeadingBlanks(year, month, opts.WeekStart)
	days := DaysInMonth(year, month)

	cells := make([]Cell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Blank: true, Events: []model.Event{}, Reminders: []model.Reminder{}})
	}
	for day := 1; day <= days; day++ {
		d := model.Date{Year: year, Month: month, Day: day}
		cells = append(cells, buildCell(d, events, reminders, opts.Now))
	}

	return Grid{
		View:     Monthly,
		Title:    fmt.Sprintf("%s %d", MonthName(month), year),
		Anchor:   model.Date{Year: year, Month: month, Day: 1},
		Weekdays: weekdayLabels(opts.WeekStart),
		Cells:    cells,
	}
}

// WeekGrid lays out the seven days of the week containing anchor.
func WeekGrid(anchor model.Date, events []model.Event, reminders []model.Reminder, opts Options) Grid {
	startT, endT := WeekBounds(anchor.In(opts.Now.Location()), opts.WeekStart)
	start := model.DateOf(startT)
	end := model.DateOf(endT)

	weekEvents := InWeek(events, start)
	weekReminders := InWeek(reminders, start)

	cells := make([]Cell, 0, 7)
	for i := 0; i < 7; i++ {
		cells = append(cells, buildCell(start.AddDays(i), weekEvents, weekReminders, opts.Now))
	}

	return Grid{
		View: Weekly,
		Title: fmt.Sprintf("%d %s - %d %s %d",
			start.Day, MonthName(start.Month), end.Day, MonthName(end.Month), end.Year),
		Anchor:   anchor,
		Weekdays: weekdayLabels(opts.WeekStart),
		Cells:    cells,
	}
}

// Shift moves anchor by step months (Monthly, landing on the 1st) or by
// step weeks (Weekly).
func Shift(view View, anchor model.Date, step int) model.Date {
	if view == Weekly {
		return anchor.AddDays(7 * step)
	}
	first := time.Date(anchor.Year, anchor.Month+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
	return model.DateOf(first)
}

func weekdayLabels(weekStart time.Weekday) []string {
	labels := make([]string, 7)
	for i := range labels {
		labels[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return labels
}
