package web

import (
	"net/http"

	"remindcal/internal/agenda"
	"remindcal/internal/model"
)

// dateFilter parses the optional ?date= query parameter.
func dateFilter(w http.ResponseWriter, r *http.Request) (model.Date, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return model.Date{}, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return model.Date{}, false
	}
	return d, true
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	d, ok := dateFilter(w, r)
	if !ok {
		return
	}
	events := ws.Book.Events()
	if !d.IsZero() {
		events = ws.Book.EventsOn(d)
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	var e model.Event
	if !decodeJSON(w, r, &e) {
		return
	}
	created, err := ws.Book.AddEvent(e)
	if err != nil {
		writeAgendaError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	var e model.Event
	if !decodeJSON(w, r, &e) {
		return
	}
	updated, err := ws.Book.UpdateEvent(r.PathValue("id"), e)
	if err != nil {
		writeAgendaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	if err := ws.Book.DeleteEvent(r.PathValue("id")); err != nil {
		writeAgendaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	d, ok := dateFilter(w, r)
	if !ok {
		return
	}
	reminders := ws.Book.Reminders()
	if !d.IsZero() {
		reminders = ws.Book.RemindersOn(d)
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// handleCreateReminder only accepts reminders scheduled in the future.
func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	var rem model.Reminder
	if !decodeJSON(w, r, &rem) {
		return
	}
	if err := agenda.ValidateReminder(rem, s.app.Now()); err != nil {
		writeAgendaError(w, err)
		return
	}
	created, err := ws.Book.AddReminder(rem)
	if err != nil {
		writeAgendaError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	var rem model.Reminder
	if !decodeJSON(w, r, &rem) {
		return
	}
	if err := agenda.ValidateReminder(rem, s.app.Now()); err != nil {
		writeAgendaError(w, err)
		return
	}
	updated, err := ws.Book.UpdateReminder(r.PathValue("id"), rem)
	if err != nil {
		writeAgendaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	if err := ws.Book.DeleteReminder(r.PathValue("id")); err != nil {
		writeAgendaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
