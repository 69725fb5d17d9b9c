package calendar

import (
	"testing"
	"time"
)

func TestDaysInMonthMatchesGregorian(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.January, 31},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, c := range cases {
		if got := DaysInMonth(c.year, c.month); got != c.want {
			t.Errorf("DaysInMonth(%d, %s) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

func TestMonthGeometryRanges(t *testing.T) {
	for year := 1999; year <= 2031; year++ {
		for m := time.January; m <= time.December; m++ {
			days := DaysInMonth(year, m)
			if days < 28 || days > 31 {
				t.Fatalf("DaysInMonth(%d, %s) = %d out of range", year, m, days)
			}
			// The last day must be the day before the 1st of next month.
			last := time.Date(year, m, days, 0, 0, 0, 0, time.UTC)
			if last.AddDate(0, 0, 1).Day() != 1 {
				t.Fatalf("%d-%s has more than %d days", year, m, days)
			}

			first := FirstWeekdayOfMonth(year, m)
			if first < 0 || first > 6 {
				t.Fatalf("FirstWeekdayOfMonth(%d, %s) = %d", year, m, first)
			}
			if want := int(time.Date(year, m, 1, 12, 0, 0, 0, time.UTC).Weekday()); first != want {
				t.Fatalf("FirstWeekdayOfMonth(%d, %s) = %d, want %d", year, m, first, want)
			}
		}
	}
}

func TestLeadingBlanks(t *testing.T) {
	// 1 September 2024 is a Sunday.
	if got := LeadingBlanks(2024, time.September, time.Sunday); got != 0 {
		t.Errorf("sunday start: %d", got)
	}
	if got := LeadingBlanks(2024, time.September, time.Monday); got != 6 {
		t.Errorf("monday start: %d", got)
	}
	// 1 May 2024 is a Wednesday.
	if got := LeadingBlanks(2024, time.May, time.Sunday); got != 3 {
		t.Errorf("may: %d", got)
	}
}

func TestIsTodayAndIsPastDate(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 45, 0, 0, time.Local)
	startOfToday := StartOfDay(now)

	if !IsToday(now, now) {
		t.Error("now must be today")
	}
	if !IsToday(startOfToday, now) {
		t.Error("midnight must be today")
	}
	if IsToday(now.AddDate(0, 0, -1), now) {
		t.Error("yesterday is not today")
	}

	if IsPastDate(startOfToday, now) {
		t.Error("start of today is not past")
	}
	if IsPastDate(now.Add(time.Hour), now) {
		t.Error("later today is not past")
	}
	if !IsPastDate(startOfToday.Add(-time.Millisecond), now) {
		t.Error("one millisecond before today is past")
	}
}

func TestWeekBoundsContaining(t *testing.T) {
	// Wednesday 12 June 2024.
	wed := time.Date(2024, time.June, 12, 18, 0, 0, 0, time.Local)
	start, end := WeekBoundsContaining(wed)

	wantStart := time.Date(2024, time.June, 9, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("bounds = %v..%v, want %v..%v", start, end, wantStart, wantEnd)
	}
	if start.Weekday() != time.Sunday || end.Weekday() != time.Saturday {
		t.Fatalf("weekdays = %v..%v", start.Weekday(), end.Weekday())
	}

	// A Sunday is the start of its own week.
	s2, _ := WeekBoundsContaining(wantStart.Add(5 * time.Hour))
	if !s2.Equal(wantStart) {
		t.Fatalf("sunday start = %v", s2)
	}

	// Monday-start weeks put Sunday at the end.
	ms, me := WeekBounds(wantStart, time.Monday)
	if ms.Day() != 3 || me.Day() != 9 {
		t.Fatalf("monday bounds = %v..%v", ms, me)
	}
}

func TestMonthName(t *testing.T) {
	if MonthName(time.January) != "January" || MonthName(time.December) != "December" {
		t.Fatal("month names")
	}
	if MonthName(13) != "" {
		t.Fatal("out of range month should be empty")
	}
}
