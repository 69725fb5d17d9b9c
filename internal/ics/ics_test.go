package ics

import (
	"strings"
	"testing"
	"time"

	"remindcal/internal/model"
)

func TestExportParseRoundTrip(t *testing.T) {
	day := model.Date{Year: 2024, Month: time.August, Day: 3}
	events := []model.Event{{
		ID: "e1", Title: "Dentist", Date: day,
		StartTime: model.Clock{Hour: 10}, EndTime: model.Clock{Hour: 11, Minute: 30},
		Description: "Bring forms",
	}}
	reminders := []model.Reminder{
		{ID: "r1", Title: "Leave for dentist", Date: day, Time: model.Clock{Hour: 9, Minute: 40}},
		{ID: "r2", Title: "Fill in forms", Date: day, Time: model.Clock{Hour: 9}, Notified: true},
	}

	body := Export("alice@example.com", events, reminders, time.Local, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(body, "BEGIN:VALARM") || !strings.Contains(body, "CATEGORIES:REMINDER") {
		t.Fatalf("export missing reminder markup:\n%s", body)
	}

	items, err := Parse([]byte(body), time.Local)
	if err != nil {
		t.Fatal(err)
	}
	if len(items.Events) != 1 || len(items.Reminders) != 2 || items.Skipped != 0 {
		t.Fatalf("items = %+v", items)
	}
	e := items.Events[0]
	if e.Title != "Dentist" || e.Date != day || e.StartTime != (model.Clock{Hour: 10}) || e.EndTime != (model.Clock{Hour: 11, Minute: 30}) {
		t.Fatalf("event = %+v", e)
	}
	if e.Description != "Bring forms" || e.UID != "e1"+model.UIDSuffix {
		t.Fatalf("event = %+v", e)
	}

	byUID := make(map[string]model.Reminder)
	for _, r := range items.Reminders {
		byUID[r.UID] = r
	}
	r := byUID["r1"+model.UIDSuffix]
	if r.Title != "Leave for dentist" || r.Date != day || r.Time != (model.Clock{Hour: 9, Minute: 40}) || r.Notified {
		t.Fatalf("reminder = %+v", r)
	}
	if done := byUID["r2"+model.UIDSuffix]; done.Title != "Fill in forms" || !done.Notified {
		t.Fatalf("notified reminder = %+v", done)
	}
}

func TestParseAllDayAndInvalid(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:holiday@test",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20241225",
		"SUMMARY:Holiday",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:untitled@test",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20241226T100000Z",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	items, err := Parse([]byte(body), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(items.Events) != 1 || items.Skipped != 1 {
		t.Fatalf("items = %+v", items)
	}
	e := items.Events[0]
	if e.Date != (model.Date{Year: 2024, Month: time.December, Day: 25}) || e.EndTime != endOfDay {
		t.Fatalf("all-day event = %+v", e)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
