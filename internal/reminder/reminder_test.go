package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"remindcal/internal/model"
	"remindcal/internal/notify"
)

type staticSource []model.Reminder

func (s staticSource) Reminders() []model.Reminder { return s }

type recordingDispatcher struct {
	mu    sync.Mutex
	ids   []string
	panic string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, r model.Reminder) notify.Result {
	if r.ID == d.panic {
		panic("channel exploded")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, r.ID)
	return notify.Result{ReminderID: r.ID, Notified: true}
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

func at(t time.Time, id string) model.Reminder {
	return model.Reminder{ID: id, Title: id, Date: model.DateOf(t), Time: model.ClockOf(t)}
}

var base = time.Date(2024, time.June, 12, 15, 0, 0, 0, time.Local)

func TestClassify(t *testing.T) {
	s := NewSession("u", base)
	cases := []struct {
		name string
		r    model.Reminder
		want State
	}{
		{"exactly now", at(base, "a"), Due},
		{"three minutes ahead", at(base.Add(3*time.Minute), "b"), Due},
		{"window edge", at(base.Add(5*time.Minute), "c"), Due},
		{"beyond window", at(base.Add(6*time.Minute), "d"), Future},
		{"ten minutes ago", at(base.Add(-10*time.Minute), "e"), Lapsed},
		{"notified", func() model.Reminder { r := at(base, "f"); r.Notified = true; return r }(), Notified},
	}
	for _, c := range cases {
		if got := Classify(c.r, base, DefaultWindow, s); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}

	s.claim("a")
	if got := Classify(at(base, "a"), base, DefaultWindow, s); got != Dispatched {
		t.Errorf("claimed reminder: got %s", got)
	}
}

func TestScanDispatchesDueReminder(t *testing.T) {
	fire := base.Add(3 * time.Minute)
	d := &recordingDispatcher{}
	s := NewSession("u", base)
	det := NewDetector(staticSource{at(fire, "soon")}, d, s, DefaultWindow)

	report := det.Scan(context.Background(), base)
	if len(report.Dispatched) != 1 || d.count() != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !s.Dispatched("soon") {
		t.Fatal("dispatched set not updated")
	}
}

func TestScanIsIdempotentWithinSession(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewSession("u", base)
	det := NewDetector(staticSource{at(base.Add(time.Minute), "r")}, d, s, DefaultWindow)

	det.Scan(context.Background(), base)
	second := det.Scan(context.Background(), base)

	if d.count() != 1 {
		t.Fatalf("dispatched %d times", d.count())
	}
	if len(second.Dispatched) != 0 {
		t.Fatalf("second scan dispatched %+v", second.Dispatched)
	}
	if ids := s.DispatchedIDs(); len(ids) != 1 || ids[0] != "r" {
		t.Fatalf("dispatched set = %v", ids)
	}
}

func TestScanNeverFiresRetroactively(t *testing.T) {
	d := &recordingDispatcher{}
	det := NewDetector(staticSource{at(base.Add(-10*time.Minute), "old")}, d, NewSession("u", base), DefaultWindow)

	for i := 0; i < 3; i++ {
		det.Scan(context.Background(), base.Add(time.Duration(i)*time.Minute))
	}
	if d.count() != 0 {
		t.Fatal("past reminder was dispatched")
	}
}

func TestScanSkipsNotifiedAndFuture(t *testing.T) {
	notified := at(base.Add(time.Minute), "done")
	notified.Notified = true
	d := &recordingDispatcher{}
	det := NewDetector(staticSource{notified, at(base.Add(time.Hour), "later")}, d, NewSession("u", base), DefaultWindow)

	report := det.Scan(context.Background(), base)
	if report.Checked != 2 || d.count() != 0 {
		t.Fatalf("report = %+v, dispatched %d", report, d.count())
	}
}

func TestScanIsolatesFailingDispatch(t *testing.T) {
	d := &recordingDispatcher{panic: "bad"}
	src := staticSource{at(base.Add(time.Minute), "bad"), at(base.Add(2*time.Minute), "good")}
	det := NewDetector(src, d, NewSession("u", base), DefaultWindow)

	report := det.Scan(context.Background(), base)
	if len(report.Failed) != 1 || report.Failed[0] != "bad" {
		t.Fatalf("failed = %v", report.Failed)
	}
	if len(report.Dispatched) != 1 || report.Dispatched[0].ReminderID != "good" {
		t.Fatalf("dispatched = %+v", report.Dispatched)
	}
}

func TestSessionEndResetsState(t *testing.T) {
	s := NewSession("u", base)
	s.claim("x")
	NewGate(s).Evaluate([]model.Reminder{at(base, "x")}, base)
	if !s.SummaryShown() {
		t.Fatal("summary flag not set")
	}

	s.End()
	if s.Dispatched("x") || s.SummaryShown() {
		t.Fatal("End must clear session state")
	}
}

func TestDailySummaryGate(t *testing.T) {
	s := NewSession("u", base)
	g := NewGate(s)
	reminders := []model.Reminder{
		at(base.Add(2*time.Hour), "upcoming"),
		at(base.Add(-2*time.Hour), "missed"),
		at(base.AddDate(0, 0, 1), "tomorrow"),
	}

	sum, shown := g.Evaluate(reminders, base)
	if !shown {
		t.Fatal("first evaluation should present the summary")
	}
	if len(sum.Upcoming) != 1 || sum.Upcoming[0].ID != "upcoming" {
		t.Fatalf("upcoming = %+v", sum.Upcoming)
	}
	if len(sum.Missed) != 1 || sum.Missed[0].ID != "missed" {
		t.Fatalf("missed = %+v", sum.Missed)
	}
	if !s.SummaryShown() {
		t.Fatal("flag not set")
	}

	if _, shown := g.Evaluate(reminders, base.Add(time.Minute)); shown {
		t.Fatal("second evaluation must not present again")
	}
	if g.computed != 1 {
		t.Fatalf("computed %d times, want 1", g.computed)
	}
}

func TestDailySummaryGateWaitsForContent(t *testing.T) {
	s := NewSession("u", base)
	g := NewGate(s)

	if _, shown := g.Evaluate(nil, base); shown {
		t.Fatal("nothing to show")
	}
	if s.SummaryShown() {
		t.Fatal("empty summary must not set the flag")
	}
	if _, shown := g.Evaluate([]model.Reminder{at(base, "now")}, base); !shown {
		t.Fatal("summary should show once reminders exist")
	}
}

func TestTodaySummaryBoundary(t *testing.T) {
	sum := TodaySummary([]model.Reminder{at(base, "exact")}, base)
	if len(sum.Upcoming) != 1 {
		t.Fatal("a reminder at exactly now counts as upcoming")
	}
}

func TestSchedulerRunsAndStops(t *testing.T) {
	d := &recordingDispatcher{}
	now := time.Now()
	det := NewDetector(staticSource{at(now.Add(2*time.Minute), "tick")}, d, NewSession("u", now), DefaultWindow)

	sched, err := NewScheduler("@every 1s", det, time.Now)
	if err != nil {
		t.Fatal(err)
	}
	sched.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for d.count() == 0 {
		if time.Now().After(deadline) {
			sched.Stop()
			t.Fatal("scheduler never scanned")
		}
		time.Sleep(50 * time.Millisecond)
	}
	sched.Stop()
	sched.Stop()

	if d.count() != 1 {
		t.Fatalf("dispatched %d times", d.count())
	}
	if sched.Last().Checked != 1 {
		t.Fatalf("last report = %+v", sched.Last())
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	det := NewDetector(staticSource{}, &recordingDispatcher{}, NewSession("u", base), 0)
	if _, err := NewScheduler("every minute please", det, nil); err == nil {
		t.Fatal("expected error")
	}
	if det.Window() != DefaultWindow {
		t.Fatalf("window = %v", det.Window())
	}
}
