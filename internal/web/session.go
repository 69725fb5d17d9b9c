package web

import (
	"errors"
	"net/http"
	"time"

	"remindcal/internal/app"
	appLog "remindcal/internal/log"
	"remindcal/internal/reminder"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User         string    `json:"user"`
	Theme        string    `json:"theme"`
	Started      time.Time `json:"started"`
	SummaryShown bool      `json:"summaryShown"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := s.app.Login(req.Email, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "email and password are required")
		return
	}
	if err != nil {
		appLog.Error("login failed", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, s.me(ws))
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	err := s.app.Logout()
	if errors.Is(err, app.ErrNoSession) {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.me(ws))
}

func (s *Server) me(ws *app.Workspace) meResponse {
	return meResponse{
		User:         ws.User(),
		Theme:        s.app.Theme(),
		Started:      ws.Session.Started(),
		SummaryShown: ws.Session.SummaryShown(),
	}
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: s.app.Theme()})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if !decodeJSON(w, r, &body) {
		return
	}
	err := s.app.SetTheme(body.Theme)
	if errors.Is(err, app.ErrInvalidTheme) {
		writeError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save theme")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// handleSummary returns today's summary the first time per session that
// there is one to show, and 204 otherwise.
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	sum, show := ws.Summary(s.app.Now())
	if !show {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type scanResponse struct {
	Window string              `json:"window"`
	Last   reminder.ScanReport `json:"last"`
	States map[string]string   `json:"states"`
}

func (s *Server) handleScan(w http.ResponseWriter, _ *http.Request) {
	ws, ok := s.workspace(w)
	if !ok {
		return
	}
	states := make(map[string]string)
	for id, st := range ws.Detector.States(s.app.Now()) {
		states[id] = st.String()
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Window: ws.Detector.Window().String(),
		Last:   ws.LastScan(),
		States: states,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	if _, ok := s.workspace(w); !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.app.Inbox().List())
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.workspace(w); !ok {
		return
	}
	if !s.app.Inbox().Dismiss(r.PathValue("tag")) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
