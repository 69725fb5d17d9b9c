package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"gopkg.in/gomail.v2"

	"remindcal/internal/model"
)

type markRecorder struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (m *markRecorder) MarkNotified(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
	return m.err
}

type fakeSender struct {
	err  error
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

type panicChannel struct{}

func (panicChannel) Name() string { return "broken" }
func (panicChannel) Deliver(context.Context, Message) (Outcome, error) {
	panic("boom")
}

type blockingChannel struct{ release chan struct{} }

func (blockingChannel) Name() string { return "slow" }
func (b blockingChannel) Deliver(ctx context.Context, _ Message) (Outcome, error) {
	select {
	case <-b.release:
		return Delivered, nil
	case <-ctx.Done():
		return Failed, ctx.Err()
	}
}

var sample = model.Reminder{
	ID:    "r-1",
	Title: "Water plants",
	Date:  model.Date{Year: 2024, Month: time.July, Day: 1},
	Time:  model.Clock{Hour: 18, Minute: 30},
}

func TestNewMessage(t *testing.T) {
	m := NewMessage("alice@example.com", sample)
	if m.Tag != "r-1" || m.Body != "Water plants" || m.Subject != "Reminder: Water plants" {
		t.Fatalf("message = %+v", m)
	}
	if !strings.Contains(m.Text, "Scheduled for: 2024-07-01 at 18:30") {
		t.Fatalf("text = %q", m.Text)
	}
}

func TestDispatchEmailFailureStillMarksNotified(t *testing.T) {
	marker := &markRecorder{}
	inbox := NewInbox(true)
	email := &Email{from: "noreply@example.com", sender: &fakeSender{err: errors.New("smtp down")}}

	d := NewDispatcher("alice@example.com", marker, time.Second, inbox, email)
	res := d.Dispatch(context.Background(), sample)

	if !res.Notified || len(marker.ids) != 1 || marker.ids[0] != "r-1" {
		t.Fatalf("reminder not marked: %+v %v", res, marker.ids)
	}
	if res.Outcome("local") != Delivered {
		t.Errorf("local = %s", res.Outcome("local"))
	}
	if res.Outcome("email") != Failed {
		t.Errorf("email = %s", res.Outcome("email"))
	}
	if len(inbox.List()) != 1 {
		t.Error("local notification missing")
	}
}

func TestDispatchSkippedChannels(t *testing.T) {
	marker := &markRecorder{}
	d := NewDispatcher("alice@example.com", marker, time.Second, NewInbox(false), NewEmail(EmailConfig{}))
	res := d.Dispatch(context.Background(), sample)

	if res.Outcome("local") != Skipped || res.Outcome("email") != Skipped {
		t.Fatalf("outcomes = %+v", res.Channels)
	}
	if !res.Notified {
		t.Fatal("skipped channels must not block the notified flag")
	}
}

func TestDispatchIsolatesPanics(t *testing.T) {
	d := NewDispatcher("a@b.c", &markRecorder{}, time.Second, panicChannel{}, NewInbox(true))
	res := d.Dispatch(context.Background(), sample)
	if res.Outcome("broken") != Failed || res.Outcome("local") != Delivered {
		t.Fatalf("outcomes = %+v", res.Channels)
	}
}

func TestDispatchMarksBeforeChannelsFinish(t *testing.T) {
	marker := &markRecorder{}
	slow := blockingChannel{release: make(chan struct{})}
	d := NewDispatcher("a@b.c", marker, 5*time.Second, slow)

	done := make(chan Result)
	go func() { done <- d.Dispatch(context.Background(), sample) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		marker.mu.Lock()
		n := len(marker.ids)
		marker.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("reminder was not marked while a channel was still running")
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(slow.release)

	if res := <-done; res.Outcome("slow") != Delivered {
		t.Fatalf("slow = %s", res.Outcome("slow"))
	}
}

func TestDispatchMarkFailure(t *testing.T) {
	d := NewDispatcher("a@b.c", &markRecorder{err: errors.New("disk full")}, time.Second, NewInbox(true))
	res := d.Dispatch(context.Background(), sample)
	if res.Notified || res.MarkErr == nil {
		t.Fatalf("result = %+v", res)
	}
	if res.Outcome("local") != Delivered {
		t.Fatal("delivery should not depend on the store write")
	}
}

func TestInboxReplacesByTag(t *testing.T) {
	in := NewInbox(true)
	ctx := context.Background()
	in.Deliver(ctx, Message{Tag: "a", Body: "first"})
	in.Deliver(ctx, Message{Tag: "b", Body: "other"})
	in.Deliver(ctx, Message{Tag: "a", Body: "second"})

	items := in.List()
	if len(items) != 2 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Tag != "a" || items[0].Body != "second" {
		t.Fatalf("tag a not replaced in place: %+v", items[0])
	}
	if !in.Dismiss("a") || in.Dismiss("a") {
		t.Fatal("Dismiss")
	}
	in.Clear()
	if len(in.List()) != 0 {
		t.Fatal("Clear")
	}
}

func TestEmailBuildsMessage(t *testing.T) {
	fs := &fakeSender{}
	e := &Email{from: "noreply@example.com", sender: fs}
	out, err := e.Deliver(context.Background(), NewMessage("alice@example.com", sample))
	if err != nil || out != Delivered {
		t.Fatalf("Deliver = %s, %v", out, err)
	}
	if len(fs.sent) != 1 {
		t.Fatal("nothing sent")
	}
	m := fs.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "alice@example.com" {
		t.Fatalf("To = %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || got[0] != "Reminder: Water plants" {
		t.Fatalf("Subject = %v", got)
	}

	if out, _ := e.Deliver(context.Background(), Message{}); out != Skipped {
		t.Fatal("message without recipient should be skipped")
	}
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestRedisPublishes(t *testing.T) {
	fp := &fakePublisher{}
	r := &Redis{client: fp, channel: "reminders"}

	out, err := r.Deliver(context.Background(), NewMessage("a@b.c", sample))
	if err != nil || out != Delivered {
		t.Fatalf("Deliver = %s, %v", out, err)
	}
	var got Message
	if err := json.Unmarshal(fp.payload, &got); err != nil {
		t.Fatal(err)
	}
	if fp.channel != "reminders" || got.Tag != "r-1" {
		t.Fatalf("published %s: %+v", fp.channel, got)
	}

	fp.err = errors.New("conn refused")
	if out, err := r.Deliver(context.Background(), Message{}); out != Failed || err == nil {
		t.Fatalf("Deliver = %s, %v", out, err)
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not a url", ""); err == nil {
		t.Fatal("expected error")
	}
}
