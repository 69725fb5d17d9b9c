package agenda

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"remindcal/internal/calendar"
	appLog "remindcal/internal/log"
	"remindcal/internal/model"
	"remindcal/internal/store"
)

var ErrNotFound = errors.New("agenda: not found")

// Book owns one user's events and reminders. Every mutation updates the
// in-memory copy and writes the whole collection back to the store. Readers
// always get copies, so views derived from them are recomputed on each read.
type Book struct {
	user  string
	store store.Store
	now   func() time.Time

	mu        sync.RWMutex
	events    []model.Event
	reminders []model.Reminder
}

// Open loads the user's collections from s.
func Open(s store.Store, user string, now func() time.Time) *Book {
	if now == nil {
		now = time.Now
	}
	b := &Book{
		user:      user,
		store:     s,
		now:       now,
		events:    s.Events(user),
		reminders: s.Reminders(user),
	}
	appLog.Debug("agenda: book opened", "user", user, "events", len(b.events), "reminders", len(b.reminders))
	return b
}

func (b *Book) User() string { return b.user }

func (b *Book) Events() []model.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.events)
}

func (b *Book) Reminders() []model.Reminder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.reminders)
}

func (b *Book) EventsOn(d model.Date) []model.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return calendar.OnDate(b.events, d)
}

func (b *Book) RemindersOn(d model.Date) []model.Reminder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return calendar.OnDate(b.reminders, d)
}

// AddEvent assigns a fresh id and creation time and appends the event.
func (b *Book) AddEvent(e model.Event) (model.Event, error) {
	if err := ValidateEvent(e); err != nil {
		return model.Event{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = b.now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return e, b.persistEvents()
}

// UpdateEvent replaces the editable fields of event id.
func (b *Book) UpdateEvent(id string, e model.Event) (model.Event, error) {
	if err := ValidateEvent(e); err != nil {
		return model.Event{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.events, func(x model.Event) bool { return x.ID == id })
	if i < 0 {
		return model.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	e.ID = b.events[i].ID
	e.CreatedAt = b.events[i].CreatedAt
	b.events[i] = e
	return e, b.persistEvents()
}

func (b *Book) DeleteEvent(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.events)
	b.events = slices.DeleteFunc(b.events, func(x model.Event) bool { return x.ID == id })
	if len(b.events) == n {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return b.persistEvents()
}

// AddReminder stores a new, not yet notified reminder.
func (b *Book) AddReminder(r model.Reminder) (model.Reminder, error) {
	if err := checkReminder(r); err != nil {
		return model.Reminder{}, err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = b.now().UTC()
	r.Notified = false

	b.mu.Lock()
	defer b.mu.Unlock()
	b.reminders = append(b.reminders, r)
	return r, b.persistReminders()
}

// UpdateReminder replaces the editable fields of reminder id. The notified
// flag can be set here but never cleared.
func (b *Book) UpdateReminder(id string, r model.Reminder) (model.Reminder, error) {
	if err := checkReminder(r); err != nil {
		return model.Reminder{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.reminders, func(x model.Reminder) bool { return x.ID == id })
	if i < 0 {
		return model.Reminder{}, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	prev := b.reminders[i]
	r.ID = prev.ID
	r.CreatedAt = prev.CreatedAt
	r.Notified = prev.Notified || r.Notified
	b.reminders[i] = r
	return r, b.persistReminders()
}

func (b *Book) DeleteReminder(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.reminders)
	b.reminders = slices.DeleteFunc(b.reminders, func(x model.Reminder) bool { return x.ID == id })
	if len(b.reminders) == n {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return b.persistReminders()
}

// MarkNotified durably records that reminder id has been dispatched.
func (b *Book) MarkNotified(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.reminders, func(x model.Reminder) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	if b.reminders[i].Notified {
		return nil
	}
	b.reminders[i].Notified = true
	return b.persistReminders()
}

// Import appends already-built items (e.g. from an .ics file) under fresh
// ids. Items whose UID is already in the book are skipped, so importing the
// same calendar twice adds nothing; a skipped reminder only contributes its
// notified flag, which never reverts.
func (b *Book) Import(events []model.Event, reminders []model.Reminder) (int, int, error) {
	now := b.now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()

	eventUIDs := make(map[string]bool, len(b.events))
	for _, x := range b.events {
		eventUIDs[x.ICalUID()] = true
	}
	reminderAt := make(map[string]int, len(b.reminders))
	for i, x := range b.reminders {
		reminderAt[x.ICalUID()] = i
	}

	addedEvents, addedReminders, flagged := 0, 0, 0
	for _, e := range events {
		if ValidateEvent(e) != nil {
			appLog.Warn("agenda: skipping invalid imported event", "title", e.Title)
			continue
		}
		if e.UID != "" && eventUIDs[e.UID] {
			appLog.Debug("agenda: skipping already imported event", "uid", e.UID)
			continue
		}
		e.ID = uuid.NewString()
		e.CreatedAt = now
		b.events = append(b.events, e)
		if e.UID != "" {
			eventUIDs[e.UID] = true
		}
		addedEvents++
	}
	for _, r := range reminders {
		if checkReminder(r) != nil {
			appLog.Warn("agenda: skipping invalid imported reminder", "title", r.Title)
			continue
		}
		if i, ok := reminderAt[r.UID]; r.UID != "" && ok {
			if r.Notified && !b.reminders[i].Notified {
				b.reminders[i].Notified = true
				flagged++
			}
			appLog.Debug("agenda: skipping already imported reminder", "uid", r.UID)
			continue
		}
		r.ID = uuid.NewString()
		r.CreatedAt = now
		b.reminders = append(b.reminders, r)
		if r.UID != "" {
			reminderAt[r.UID] = len(b.reminders) - 1
		}
		addedReminders++
	}

	if addedEvents > 0 {
		if err := b.persistEvents(); err != nil {
			return addedEvents, addedReminders, err
		}
	}
	if addedReminders > 0 || flagged > 0 {
		return addedEvents, addedReminders, b.persistReminders()
	}
	return addedEvents, addedReminders, nil
}

// persist* must be called with mu held. A failed write leaves the in-memory
// state authoritative for the rest of the session.
func (b *Book) persistEvents() error {
	if err := b.store.SaveEvents(b.user, b.events); err != nil {
		appLog.Error("agenda: saving events failed", err, "user", b.user)
		return err
	}
	return nil
}

func (b *Book) persistReminders() error {
	if err := b.store.SaveReminders(b.user, b.reminders); err != nil {
		appLog.Error("agenda: saving reminders failed", err, "user", b.user)
		return err
	}
	return nil
}
