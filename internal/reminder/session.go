package reminder

import (
	"sort"
	"sync"
	"time"
)

// Session is the state that lives for one signed-in run of the program and
// is thrown away afterwards: the ids dispatched so far and whether today's
// summary has been shown. The durable notified flag lives on the reminder.
type Session struct {
	user    string
	started time.Time

	mu           sync.Mutex
	dispatched   map[string]struct{}
	summaryShown bool
}

func NewSession(user string, started time.Time) *Session {
	return &Session{
		user:       user,
		started:    started,
		dispatched: make(map[string]struct{}),
	}
}

func (s *Session) User() string       { return s.user }
func (s *Session) Started() time.Time { return s.started }

// Dispatched reports whether id was dispatched during this session.
func (s *Session) Dispatched(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dispatched[id]
	return ok
}

// claim records id as dispatched. It returns false if it already was.
func (s *Session) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dispatched[id]; ok {
		return false
	}
	s.dispatched[id] = struct{}{}
	return true
}

// DispatchedIDs lists the dispatched set in sorted order.
func (s *Session) DispatchedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.dispatched))
	for id := range s.dispatched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Session) SummaryShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryShown
}

// End clears all session state.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched = make(map[string]struct{})
	s.summaryShown = false
}
