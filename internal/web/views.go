package web

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"remindcal/internal/calendar"
	"remindcal/internal/ics"
	appLog "remindcal/internal/log"
	"remindcal/internal/model"
)

// maxImportBody caps uploaded .ics payloads.
const maxImportBody = 4 << 20

func parseIntDefault(s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Server) gridOptions() calendar.Options {
	return calendar.Options{Now: s.app.Now(), WeekStart: s.cfg.WeekStartDay()}
}

// handleGrid serves either view: ?view=monthly|weekly&date=YYYY-MM-DD&shift=N.
// shift moves the anchor by whole months or weeks.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	view := calendar.ParseView(q.Get("view"))

	anchor := model.DateOf(s.app.Now())
	if raw := q.Get("date"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		anchor = d
	}
	shift, ok := parseIntDefault(q.Get("shift"), 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "shift must be an integer")
		return
	}
	anchor = calendar.Shift(view, anchor, shift)

	var g calendar.Grid
	if view == calendar.Weekly {
		g = calendar.WeekGrid(anchor, ws.Book.Events(), ws.Book.Reminders(), s.gridOptions())
	} else {
		g = calendar.MonthGrid(anchor.Year, anchor.Month, ws.Book.Events(), ws.Book.Reminders(), s.gridOptions())
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleMonthGrid(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	now := s.app.Now()
	year, ok := parseIntDefault(r.URL.Query().Get("year"), now.Year())
	if !ok {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	month, ok := parseIntDefault(r.URL.Query().Get("month"), int(now.Month()))
	if !ok || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}
	g := calendar.MonthGrid(year, time.Month(month), ws.Book.Events(), ws.Book.Reminders(), s.gridOptions())
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleWeekGrid(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	d, ok := dateFilter(w, r)
	if !ok {
		return
	}
	if d.IsZero() {
		d = model.DateOf(s.app.Now())
	}
	g := calendar.WeekGrid(d, ws.Book.Events(), ws.Book.Reminders(), s.gridOptions())
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	body := ics.Export(ws.User(), ws.Book.Events(), ws.Book.Reminders(), time.Local, s.app.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

type importResponse struct {
	Events    int `json:"events"`
	Reminders int `json:"reminders"`
	Skipped   int `json:"skipped"`
}

// urlImportEnabled requires both the config switch and basic auth, so an
// open listener never fetches arbitrary addresses for anonymous callers.
func (s *Server) urlImportEnabled() bool {
	return s.fetcher != nil && s.cfg != nil && s.cfg.ImportURLs && s.basicAuthEnabled()
}

// handleImport takes a text/calendar body, or ?url= pointing at one.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}

	var (
		body []byte
		err  error
	)
	if src := r.URL.Query().Get("url"); src != "" {
		if !s.urlImportEnabled() {
			writeError(w, http.StatusForbidden, "import by url is disabled")
			return
		}
		body, err = s.fetcher.Fetch(r.Context(), src)
		if err != nil {
			appLog.Error("import fetch failed", err)
			writeError(w, http.StatusBadGateway, "failed to fetch calendar")
			return
		}
	} else {
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body")
			return
		}
	}

	items, err := ics.Parse(body, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid calendar: "+err.Error())
		return
	}
	events, reminders, err := ws.Book.Import(items.Events, items.Reminders)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save")
		return
	}
	skipped := items.Skipped + len(items.Events) - events + len(items.Reminders) - reminders
	writeJSON(w, http.StatusOK, importResponse{Events: events, Reminders: reminders, Skipped: skipped})
}
