// Package reminder decides when reminders are due, hands them to the
// dispatcher exactly once per session, and gates the daily summary.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	appLog "remindcal/internal/log"
	"remindcal/internal/model"
	"remindcal/internal/notify"
)

// DefaultWindow is how far ahead of its fire time a reminder becomes due.
const DefaultWindow = 5 * time.Minute

// State is where a reminder sits relative to now and the session.
type State int

const (
	// Future reminders fire more than one window from now.
	Future State = iota
	// Due reminders fire within [now, now+window] and await dispatch.
	Due
	// Dispatched reminders were handed to the dispatcher this session.
	Dispatched
	// Notified reminders carry the durable flag.
	Notified
	// Lapsed reminders are past their fire time without having been
	// dispatched. They are never fired retroactively.
	Lapsed
)

func (s State) String() string {
	switch s {
	case Future:
		return "future"
	case Due:
		return "due"
	case Dispatched:
		return "dispatched"
	case Notified:
		return "notified"
	case Lapsed:
		return "lapsed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Classify computes the state of r at now.
func Classify(r model.Reminder, now time.Time, window time.Duration, s *Session) State {
	if r.Notified {
		return Notified
	}
	if s != nil && s.Dispatched(r.ID) {
		return Dispatched
	}
	diff := r.FireTime(now.Location()).Sub(now)
	switch {
	case diff < 0:
		return Lapsed
	case diff <= window:
		return Due
	default:
		return Future
	}
}

// Source yields the current reminder collection.
type Source interface {
	Reminders() []model.Reminder
}

// Dispatcher delivers one due reminder.
type Dispatcher interface {
	Dispatch(ctx context.Context, r model.Reminder) notify.Result
}

// Detector scans a reminder collection for newly due reminders.
type Detector struct {
	source     Source
	dispatcher Dispatcher
	session    *Session
	window     time.Duration
}

func NewDetector(source Source, dispatcher Dispatcher, session *Session, window time.Duration) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Detector{source: source, dispatcher: dispatcher, session: session, window: window}
}

// ScanReport summarizes one scan.
type ScanReport struct {
	At         time.Time       `json:"at"`
	Checked    int             `json:"checked"`
	Dispatched []notify.Result `json:"dispatched"`
	// Failed lists reminders whose dispatch panicked.
	Failed []string `json:"failed,omitempty"`
}

// Scan evaluates every reminder against now. Due reminders are claimed in
// the session before dispatch starts, so a second scan never dispatches
// them again. Dispatches run concurrently and one failing dispatch does not
// affect the others.
func (d *Detector) Scan(ctx context.Context, now time.Time) ScanReport {
	report := ScanReport{At: now}

	var due []model.Reminder
	for _, r := range d.source.Reminders() {
		report.Checked++
		if r.Notified || d.session.Dispatched(r.ID) {
			continue
		}
		if Classify(r, now, d.window, nil) != Due {
			continue
		}
		if !d.session.claim(r.ID) {
			continue
		}
		due = append(due, r)
	}

	if len(due) == 0 {
		appLog.Debug("reminder: scan found nothing due", "user", d.session.User(), "checked", report.Checked)
		return report
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, r := range due {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := d.dispatchOne(ctx, r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				appLog.Error("reminder: dispatch failed", err, "reminder_id", r.ID, "user", d.session.User())
				report.Failed = append(report.Failed, r.ID)
				return
			}
			report.Dispatched = append(report.Dispatched, res)
		}()
	}
	wg.Wait()

	appLog.Info("reminder: scan dispatched reminders",
		"user", d.session.User(),
		"checked", report.Checked,
		"dispatched", len(report.Dispatched),
		"failed", len(report.Failed),
	)
	return report
}

func (d *Detector) dispatchOne(ctx context.Context, r model.Reminder) (res notify.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("reminder: dispatch panicked: %v", p)
		}
	}()
	appLog.Info("reminder: due", "reminder_id", r.ID, "title", r.Title, "fire_at", r.FireTime(time.Local).Format(time.RFC3339))
	return d.dispatcher.Dispatch(ctx, r), nil
}

// Window returns the configured firing window.
func (d *Detector) Window() time.Duration { return d.window }

// States classifies every reminder, for inspection endpoints.
func (d *Detector) States(now time.Time) map[string]State {
	out := make(map[string]State)
	for _, r := range d.source.Reminders() {
		out[r.ID] = Classify(r, now, d.window, d.session)
	}
	return out
}
