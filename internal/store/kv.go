package store

import (
	"encoding/json"
	"fmt"

	appLog "remindcal/internal/log"
	"remindcal/internal/model"
)

// kv is the raw byte layer both implementations provide. get returns nil
// for a missing key.
type kv interface {
	get(key string) ([]byte, error)
	put(key string, value []byte) error
	del(key string) error
	close() error
}

// jsonStore implements Store on top of any kv.
type jsonStore struct {
	kv kv
}

func (s *jsonStore) CurrentUser() (string, bool) {
	var user string
	if !s.load(keyCurrentUser, &user) || user == "" {
		return "", false
	}
	return user, true
}

func (s *jsonStore) SaveUser(user string) error {
	return s.save(keyCurrentUser, user)
}

func (s *jsonStore) ClearUser() error {
	if err := s.kv.del(keyCurrentUser); err != nil {
		return fmt.Errorf("store: clear user: %w", err)
	}
	return nil
}

func (s *jsonStore) Events(user string) []model.Event {
	var events []model.Event
	if !s.load(eventsKey(user), &events) || events == nil {
		return []model.Event{}
	}
	return events
}

func (s *jsonStore) SaveEvents(user string, events []model.Event) error {
	return s.save(eventsKey(user), events)
}

func (s *jsonStore) Reminders(user string) []model.Reminder {
	var reminders []model.Reminder
	if !s.load(remindersKey(user), &reminders) || reminders == nil {
		return []model.Reminder{}
	}
	return reminders
}

func (s *jsonStore) SaveReminders(user string, reminders []model.Reminder) error {
	return s.save(remindersKey(user), reminders)
}

func (s *jsonStore) Theme() string {
	var theme string
	if !s.load(keyTheme, &theme) || theme == "" {
		return DefaultTheme
	}
	return theme
}

func (s *jsonStore) SaveTheme(theme string) error {
	return s.save(keyTheme, theme)
}

func (s *jsonStore) Close() error {
	return s.kv.close()
}

// load decodes key into v and reports whether a value was found.
func (s *jsonStore) load(key string, v any) bool {
	data, err := s.kv.get(key)
	if err != nil {
		appLog.Error("store: read failed; treating as empty", err, "key", key)
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		appLog.Error("store: decode failed; treating as empty", err, "key", key)
		return false
	}
	return true
}

func (s *jsonStore) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.kv.put(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}
