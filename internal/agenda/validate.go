package agenda

import (
	"sort"
	"strings"
	"time"

	"remindcal/internal/model"
)

// ValidationError maps form fields to messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateReminder checks a reminder form; a reminder must be scheduled
// after now.
func ValidateReminder(r model.Reminder, now time.Time) error {
	verr := &ValidationError{}
	if err := checkReminder(r); err != nil {
		verr = err.(*ValidationError)
	}
	if !r.Date.IsZero() && !r.FireTime(now.Location()).After(now) {
		verr.add("time", "Reminder time must be in the future")
	}
	return verr.orNil()
}

// ValidateEvent checks an event form. Book runs it on every add and update.
func ValidateEvent(e model.Event) error {
	verr := &ValidationError{}
	if strings.TrimSpace(e.Title) == "" {
		verr.add("title", "Title is required")
	}
	if e.Date.IsZero() {
		verr.add("date", "Date is required")
	}
	if !e.StartTime.Before(e.EndTime) {
		verr.add("endTime", "End time must be after start time")
	}
	return verr.orNil()
}

func checkReminder(r model.Reminder) error {
	verr := &ValidationError{}
	if strings.TrimSpace(r.Title) == "" {
		verr.add("title", "Title is required")
	}
	if r.Date.IsZero() {
		verr.add("date", "Date is required")
	}
	return verr.orNil()
}
