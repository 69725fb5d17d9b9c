package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "remindcal/internal/log"
	"remindcal/internal/model"
)

// ReminderCategory marks a VEVENT that stands for a reminder rather than an
// event.
const ReminderCategory = "REMINDER"

// Items is what an iCalendar body imports as.
type Items struct {
	Events    []model.Event
	Reminders []model.Reminder
	// Skipped counts VEVENTs that could not be converted.
	Skipped int
}

var endOfDay = model.Clock{Hour: 23, Minute: 59}

// Parse converts the VEVENTs of an iCalendar payload into events and
// reminders in loc.
//
//   - VEVENTs whose CATEGORIES contain REMINDER become reminders firing at
//     DTSTART.
//   - All-day VEVENTs (VALUE=DATE or a DTSTART without a time part) become
//     events spanning 00:00-23:59.
//   - Events ending on a later day are clipped to 23:59 of their start day.
//   - RRULE is ignored; only the first occurrence is imported.
func Parse(body []byte, loc *time.Location) (Items, error) {
	var out Items
	if len(body) == 0 {
		return out, errors.New("ics: empty body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return out, err
	}

	for _, ve := range cal.Events() {
		if err := convert(ve, loc, &out); err != nil {
			appLog.Warn("ics: skipping vevent", "err", err)
			out.Skipped++
		}
	}

	appLog.Info("ics: parse completed",
		"events", len(out.Events),
		"reminders", len(out.Reminders),
		"skipped", out.Skipped,
	)
	return out, nil
}

func convert(ve *ical.VEvent, loc *time.Location, out *Items) error {
	var title, description string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		description = p.Value
	}
	if strings.TrimSpace(title) == "" {
		return errors.New("missing SUMMARY")
	}
	var uid string
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = strings.TrimSpace(p.Value)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		appLog.Info("ics: recurrence ignored; importing first occurrence", "title", title, "rrule", p.Value)
	}

	// All-day values are civil dates; read them as written so no zone
	// conversion can move them to a neighbouring day.
	if day, ok := allDayDate(ve); ok && !isReminder(ve) {
		out.Events = append(out.Events, model.Event{
			Title:       title,
			Date:        day,
			EndTime:     endOfDay,
			Description: description,
			UID:         uid,
		})
		return nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return err
	}
	start = start.In(loc)

	if isReminder(ve) {
		out.Reminders = append(out.Reminders, model.Reminder{
			Title:       title,
			Date:        model.DateOf(start),
			Time:        model.ClockOf(start),
			Description: description,
			Notified:    isNotified(ve),
			UID:         uid,
		})
		return nil
	}

	ev := model.Event{
		Title:       title,
		Date:        model.DateOf(start),
		StartTime:   model.ClockOf(start),
		Description: description,
		UID:         uid,
	}

	end, err := ve.GetEndAt()
	if err != nil {
		end = start.Add(time.Hour)
	}
	end = end.In(loc)
	if model.DateOf(end) != ev.Date {
		ev.EndTime = endOfDay
	} else {
		ev.EndTime = model.ClockOf(end)
	}
	if !ev.StartTime.Before(ev.EndTime) {
		return errors.New("event has no duration")
	}

	out.Events = append(out.Events, ev)
	return nil
}

func isReminder(ve *ical.VEvent) bool {
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if strings.EqualFold(strings.TrimSpace(c), ReminderCategory) {
				return true
			}
		}
	}
	return false
}

func allDayDate(ve *ical.VEvent) (model.Date, bool) {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return model.Date{}, false
	}
	dateValue := !strings.Contains(p.Value, "T")
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		dateValue = true
	}
	if !dateValue || len(p.Value) < 8 {
		return model.Date{}, false
	}
	t, err := time.Parse("20060102", p.Value[:8])
	if err != nil {
		return model.Date{}, false
	}
	return model.DateOf(t), true
}

func isNotified(ve *ical.VEvent) bool {
	p := ve.GetProperty(propNotified)
	return p != nil && strings.EqualFold(strings.TrimSpace(p.Value), "TRUE")
}
