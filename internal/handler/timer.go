package handler

import (
	"net/http"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/middleware"
)

// GetActiveTimer handles GET /time-entries/active-timer.
// Responds 200 with null when the user has no running timer.
func (s *Server) GetActiveTimer(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	active, running, err := s.entries.ActiveTimer(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err, "no active timer")
		return
	}
	if !running {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	elapsed := domain.ElapsedSeconds(active.StartTime, s.entries.Now())
	if elapsed < 0 {
		elapsed = 0
	}
	writeJSON(w, http.StatusOK, ActiveTimer{TimeEntry: entryToResponse(active), ElapsedSeconds: elapsed})
}

// StartTimer handles POST /time-entries/start-timer.
func (s *Server) StartTimer(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var body StartTimerRequest
	if err := decodeBody(r, &body); err != nil {
		s.respondBodyError(w, r, err)
		return
	}

	started, err := s.entries.StartTimer(r.Context(), userID, body.ProjectID, body.Description)
	if err != nil {
		s.respondError(w, r, err, "project not found")
		return
	}
	writeJSON(w, http.StatusCreated, entryToResponse(started))
}

// StopTimer handles POST /time-entries/stop-timer. It takes no body.
func (s *Server) StopTimer(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	stopped, err := s.entries.StopTimer(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err, "no active timer")
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(stopped))
}
