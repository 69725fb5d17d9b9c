package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "remindcal/internal/log"
)

// DefaultSchedule scans once a minute.
const DefaultSchedule = "@every 60s"

// Scheduler runs a Detector on a cron schedule. Scans never overlap: a tick
// that arrives while a scan is running is skipped.
type Scheduler struct {
	detector *Detector
	now      func() time.Time
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	last   ScanReport
}

// NewScheduler validates spec and prepares a stopped scheduler.
func NewScheduler(spec string, d *Detector, now func() time.Time) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if now == nil {
		now = time.Now
	}

	logger := appLog.CronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s := &Scheduler{detector: d, now: now, cron: c}

	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("reminder: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scanning. Cancelling parent also aborts in-flight dispatches.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(parent)
	s.cron.Start()
	appLog.Info("reminder: scheduler started", "user", s.detector.session.User())
}

// Stop cancels the schedule and waits for a running scan to return. After
// Stop no further dispatch happens for this session.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}

	stopped := s.cron.Stop()
	cancel()
	<-stopped.Done()
	appLog.Info("reminder: scheduler stopped", "user", s.detector.session.User())
}

// Last returns the report of the most recent scan.
func (s *Scheduler) Last() ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	report := s.detector.Scan(ctx, s.now())

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
}
