// Package store persists the signed-in user, their events and reminders, and
// the UI theme as JSON values under a flat key space:
//
//	currentUser        -> "alice@example.com"
//	events_<user>      -> [Event, ...]
//	reminders_<user>   -> [Reminder, ...]
//	theme              -> "light"
//
// Reads never fail toward the caller: a missing or unreadable key yields the
// empty value and the failure is logged. Writes return their error so callers
// can log it.
package store

import (
	"remindcal/internal/model"
)

const (
	keyCurrentUser  = "currentUser"
	keyTheme        = "theme"
	prefixEvents    = "events_"
	prefixReminders = "reminders_"
	DefaultTheme    = "light"
)

// Store is the persistence contract consumed by the rest of the program.
type Store interface {
	CurrentUser() (string, bool)
	SaveUser(user string) error
	ClearUser() error

	Events(user string) []model.Event
	SaveEvents(user string, events []model.Event) error

	Reminders(user string) []model.Reminder
	SaveReminders(user string, reminders []model.Reminder) error

	Theme() string
	SaveTheme(theme string) error

	Close() error
}

func eventsKey(user string) string    { return prefixEvents + user }
func remindersKey(user string) string { return prefixReminders + user }
