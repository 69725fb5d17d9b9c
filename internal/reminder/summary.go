package reminder

import (
	"time"

	"remindcal/internal/model"
)

// Summary lists today's reminders split around now.
type Summary struct {
	Date     model.Date       `json:"date"`
	Upcoming []model.Reminder `json:"upcoming"`
	Missed   []model.Reminder `json:"missed"`
}

func (s Summary) Empty() bool {
	return len(s.Upcoming) == 0 && len(s.Missed) == 0
}

// Gate computes today's summary at most once per session.
type Gate struct {
	session  *Session
	computed int
}

func NewGate(s *Session) *Gate {
	return &Gate{session: s}
}

// Evaluate returns today's summary and true the first time it finds any
// reminder for today. Once that has happened, later calls in the same
// session return immediately without looking at the reminders.
func (g *Gate) Evaluate(reminders []model.Reminder, now time.Time) (Summary, bool) {
	g.session.mu.Lock()
	defer g.session.mu.Unlock()
	if g.session.summaryShown {
		return Summary{}, false
	}

	g.computed++
	sum := TodaySummary(reminders, now)
	if sum.Empty() {
		return sum, false
	}
	g.session.summaryShown = true
	return sum, true
}

// TodaySummary partitions the reminders dated today into upcoming (fire
// time at or after now) and missed.
func TodaySummary(reminders []model.Reminder, now time.Time) Summary {
	today := model.DateOf(now)
	sum := Summary{Date: today, Upcoming: []model.Reminder{}, Missed: []model.Reminder{}}
	for _, r := range reminders {
		if r.Date != today {
			continue
		}
		if r.FireTime(now.Location()).Before(now) {
			sum.Missed = append(sum.Missed, r)
		} else {
			sum.Upcoming = append(sum.Upcoming, r)
		}
	}
	return sum
}
