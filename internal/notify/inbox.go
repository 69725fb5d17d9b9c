package notify

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Notification is an entry in the local notification centre.
type Notification struct {
	Tag   string    `json:"tag"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// Inbox is the local system notification channel. Clients poll it; a
// notification with an already present tag replaces the old one in place.
// A disabled inbox behaves like a denied notification permission.
type Inbox struct {
	mu      sync.Mutex
	enabled bool
	items   []Notification
	now     func() time.Time
}

func NewInbox(enabled bool) *Inbox {
	return &Inbox{enabled: enabled, now: time.Now}
}

func (*Inbox) Name() string { return "local" }

func (in *Inbox) Deliver(_ context.Context, msg Message) (Outcome, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.enabled {
		return Skipped, nil
	}

	n := Notification{Tag: msg.Tag, Title: msg.Title, Body: msg.Body, At: in.now()}
	if i := slices.IndexFunc(in.items, func(x Notification) bool { return x.Tag == n.Tag }); i >= 0 && n.Tag != "" {
		in.items[i] = n
	} else {
		in.items = append(in.items, n)
	}
	return Delivered, nil
}

// List returns pending notifications, oldest first.
func (in *Inbox) List() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Clone(in.items)
}

// Dismiss removes the notification with tag and reports whether it existed.
func (in *Inbox) Dismiss(tag string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	n := len(in.items)
	in.items = slices.DeleteFunc(in.items, func(x Notification) bool { return x.Tag == tag })
	return len(in.items) != n
}

// Clear drops everything, used when the session ends.
func (in *Inbox) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = nil
}
