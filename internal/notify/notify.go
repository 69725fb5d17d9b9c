// Package notify delivers due reminders through independent channels and
// records the durable notified flag.
package notify

import (
	"context"
	"fmt"

	"remindcal/internal/model"
)

// Outcome is what happened on one channel for one dispatch.
type Outcome string

const (
	Delivered Outcome = "delivered"
	Skipped   Outcome = "skipped"
	Failed    Outcome = "failed"
)

// Message is the channel-neutral content of a reminder notification.
type Message struct {
	// Tag identifies the reminder; channels that support it replace an
	// earlier notification carrying the same tag.
	Tag   string `json:"tag"`
	Title string `json:"title"`
	Body  string `json:"body"`

	To      string `json:"to,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`

	Date model.Date  `json:"date"`
	Time model.Clock `json:"time"`
}

// NewMessage builds the notification for reminder r owned by user.
func NewMessage(user string, r model.Reminder) Message {
	return Message{
		Tag:     r.ID,
		Title:   "Reminder",
		Body:    r.Title,
		To:      user,
		Subject: "Reminder: " + r.Title,
		Text:    fmt.Sprintf("You asked me to remind you: %s\nScheduled for: %s at %s", r.Title, r.Date, r.Time),
		Date:    r.Date,
		Time:    r.Time,
	}
}

// Channel is one delivery path. Deliver returns Skipped with a nil error
// when the channel is unavailable (disabled, unconfigured, no permission).
type Channel interface {
	Name() string
	Deliver(ctx context.Context, msg Message) (Outcome, error)
}
