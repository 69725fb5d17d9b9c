// Package app ties a signed-in user to their agenda and the background
// reminder machinery, and tears both down again on logout.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"remindcal/internal/agenda"
	"remindcal/internal/config"
	appLog "remindcal/internal/log"
	"remindcal/internal/notify"
	"remindcal/internal/reminder"
	"remindcal/internal/store"
)

var (
	ErrNoSession          = errors.New("app: no active session")
	ErrInvalidCredentials = errors.New("app: email and password are required")
	ErrInvalidTheme       = errors.New("app: theme must be light or dark")
)

// Workspace is everything that belongs to one signed-in session.
type Workspace struct {
	Book     *agenda.Book
	Session  *reminder.Session
	Detector *reminder.Detector
	Gate     *reminder.Gate

	scheduler *reminder.Scheduler
}

func (w *Workspace) User() string { return w.Book.User() }

// LastScan returns the report of the most recent scheduled scan.
func (w *Workspace) LastScan() reminder.ScanReport {
	return w.scheduler.Last()
}

// Summary runs the daily-summary gate against the current reminders.
func (w *Workspace) Summary(now time.Time) (reminder.Summary, bool) {
	return w.Gate.Evaluate(w.Book.Reminders(), now)
}

// App owns the single active session.
type App struct {
	cfg      *config.Config
	store    store.Store
	inbox    *notify.Inbox
	channels []notify.Channel
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	ws *Workspace
}

// New builds an App. inbox is always included as the first channel; extra
// channels are appended after it.
func New(cfg *config.Config, s store.Store, inbox *notify.Inbox, now func() time.Time, channels ...notify.Channel) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if now == nil {
		now = time.Now
	}
	if inbox == nil {
		inbox = notify.NewInbox(cfg.Notifications.Local)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:      cfg,
		store:    s,
		inbox:    inbox,
		channels: append([]notify.Channel{inbox}, channels...),
		now:      now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (a *App) Inbox() *notify.Inbox { return a.inbox }

func (a *App) Now() time.Time { return a.now() }

// Login accepts any non-empty email and password. Signing in as the user
// who is already active keeps the running session; signing in as someone
// else ends the current session first.
func (a *App) Login(email, password string) (*Workspace, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ws != nil {
		if a.ws.User() == email {
			return a.ws, nil
		}
		a.endLocked()
		a.inbox.Clear()
	}

	ws, err := a.beginLocked(email)
	if err != nil {
		return nil, err
	}
	if err := a.store.SaveUser(email); err != nil {
		appLog.Error("app: save current user failed", err, "user", email)
		a.endLocked()
		return nil, fmt.Errorf("app: save user: %w", err)
	}
	appLog.Info("app: logged in", "user", email)
	return ws, nil
}

// Resume restores the session of the user recorded in the store, if any.
func (a *App) Resume() (*Workspace, bool, error) {
	user, ok := a.store.CurrentUser()
	if !ok {
		return nil, false, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ws != nil {
		return a.ws, true, nil
	}
	ws, err := a.beginLocked(user)
	if err != nil {
		return nil, false, err
	}
	appLog.Info("app: session resumed", "user", user)
	return ws, true, nil
}

// Logout stops the scheduler before clearing the session, so nothing is
// dispatched for the departing user afterwards.
func (a *App) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ws == nil {
		return ErrNoSession
	}
	user := a.ws.User()
	a.endLocked()
	a.inbox.Clear()
	if err := a.store.ClearUser(); err != nil {
		appLog.Error("app: clear current user failed", err, "user", user)
		return fmt.Errorf("app: clear user: %w", err)
	}
	appLog.Info("app: logged out", "user", user)
	return nil
}

// Active returns the current workspace or ErrNoSession.
func (a *App) Active() (*Workspace, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ws == nil {
		return nil, ErrNoSession
	}
	return a.ws, nil
}

func (a *App) Theme() string { return a.store.Theme() }

func (a *App) SetTheme(theme string) error {
	switch theme {
	case "light", "dark":
	default:
		return ErrInvalidTheme
	}
	return a.store.SaveTheme(theme)
}

// Close stops background work without signing the user out, so the next
// start resumes the same session.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ws != nil {
		a.ws.scheduler.Stop()
		a.ws = nil
	}
	a.cancel()
}

func (a *App) beginLocked(user string) (*Workspace, error) {
	book := agenda.Open(a.store, user, a.now)
	session := reminder.NewSession(user, a.now())
	dispatcher := notify.NewDispatcher(user, book, a.cfg.EmailTimeout, a.channels...)
	detector := reminder.NewDetector(book, dispatcher, session, a.cfg.FiringWindow)

	sched, err := reminder.NewScheduler(a.cfg.CheckSchedule, detector, a.now)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Book:      book,
		Session:   session,
		Detector:  detector,
		Gate:      reminder.NewGate(session),
		scheduler: sched,
	}
	sched.Start(a.ctx)
	a.ws = ws
	return ws, nil
}

func (a *App) endLocked() {
	a.ws.scheduler.Stop()
	a.ws.Session.End()
	a.ws = nil
}
