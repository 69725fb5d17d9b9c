package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	appLog "remindcal/internal/log"
	"remindcal/internal/model"
)

const defaultTimeout = 30 * time.Second

// Marker durably flags a reminder as notified.
type Marker interface {
	MarkNotified(id string) error
}

// ChannelResult reports one channel's part of a dispatch.
type ChannelResult struct {
	Channel string  `json:"channel"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Result is the full record of one dispatch.
type Result struct {
	ReminderID string          `json:"reminder_id"`
	Channels   []ChannelResult `json:"channels"`
	// Notified is false only when the store write failed.
	Notified bool  `json:"notified"`
	MarkErr  error `json:"-"`
}

// Outcome returns the outcome of the named channel, or "" if absent.
func (r Result) Outcome(channel string) Outcome {
	for _, c := range r.Channels {
		if c.Channel == channel {
			return c.Outcome
		}
	}
	return ""
}

// Dispatcher fans a reminder out to every channel for one user.
type Dispatcher struct {
	user     string
	marker   Marker
	channels []Channel
	timeout  time.Duration
}

func NewDispatcher(user string, marker Marker, timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{user: user, marker: marker, channels: channels, timeout: timeout}
}

// Dispatch starts every channel concurrently and marks the reminder notified
// without waiting for them. Channel failures never undo the mark. It returns
// once every channel has finished or the timeout has passed.
func (d *Dispatcher) Dispatch(ctx context.Context, r model.Reminder) Result {
	msg := NewMessage(d.user, r)
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res := Result{ReminderID: r.ID, Channels: make([]ChannelResult, len(d.channels))}

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.Channels[i] = deliver(ctx, ch, msg)
		}()
	}

	if err := d.marker.MarkNotified(r.ID); err != nil {
		res.MarkErr = err
		appLog.Error("notify: marking reminder notified failed", err, "reminder_id", r.ID, "user", d.user)
	} else {
		res.Notified = true
	}

	wg.Wait()

	for _, c := range res.Channels {
		if c.Err != nil {
			appLog.Error("notify: channel delivery failed", c.Err, "reminder_id", r.ID, "channel", c.Channel)
			continue
		}
		appLog.Info("notify: channel finished", "reminder_id", r.ID, "channel", c.Channel, "outcome", c.Outcome)
	}
	return res
}

func deliver(ctx context.Context, ch Channel, msg Message) (cr ChannelResult) {
	cr.Channel = ch.Name()
	defer func() {
		if p := recover(); p != nil {
			cr.Outcome = Failed
			cr.Err = fmt.Errorf("notify: channel %s panicked: %v", cr.Channel, p)
		}
	}()

	out, err := ch.Deliver(ctx, msg)
	if err != nil && out != Failed {
		out = Failed
	}
	cr.Outcome = out
	cr.Err = err
	return cr
}
