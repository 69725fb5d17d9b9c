// Package ics converts a user's calendar to and from iCalendar.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"remindcal/internal/model"
)

const (
	productID    = "-//remindcal//EN"
	propNotified = ical.ComponentProperty("X-REMINDCAL-NOTIFIED")
)

// Export renders events and reminders as a VCALENDAR. Reminders become
// zero-length VEVENTs in the REMINDER category with a DISPLAY alarm at
// their fire time.
func Export(user string, events []model.Event, reminders []model.Reminder, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(user)

	for _, e := range events {
		ve := cal.AddEvent(e.ICalUID())
		ve.SetDtStampTime(now)
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		ve.SetStartAt(e.Start(loc))
		ve.SetEndAt(model.On(e.Date, e.EndTime, loc))
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
	}

	for _, r := range reminders {
		fire := r.FireTime(loc)
		ve := cal.AddEvent(r.ICalUID())
		ve.SetDtStampTime(now)
		if !r.CreatedAt.IsZero() {
			ve.SetCreatedTime(r.CreatedAt)
		}
		ve.SetStartAt(fire)
		ve.SetEndAt(fire)
		ve.SetSummary(r.Title)
		if r.Description != "" {
			ve.SetDescription(r.Description)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, ReminderCategory)
		if r.Notified {
			ve.SetProperty(propNotified, "TRUE")
		}

		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger("-PT0M")
	}

	return cal.Serialize()
}
