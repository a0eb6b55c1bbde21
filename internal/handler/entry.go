package handler

import (
	"net/http"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/middleware"
)

const entryNotFound = "time entry not found"

// ListTimeEntries handles GET /time-entries.
// Supports ?startDate=, ?endDate= and ?limit= (default unlimited, max 1000).
func (s *Server) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	rng, err := bindDateRange(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	limit, err := bindLimit(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	entries, err := s.entries.List(r.Context(), userID, domain.NewEntryFilter(rng, limit))
	if err != nil {
		s.respondError(w, r, err, entryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entriesToResponse(entries))
}

// GetTimeEntry handles GET /time-entries/{id}.
func (s *Server) GetTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id, err := bindID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	entry, err := s.entries.Get(r.Context(), userID, id)
	if err != nil {
		s.respondError(w, r, err, entryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(entry))
}

// CreateTimeEntry handles POST /time-entries.
func (s *Server) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var body CreateTimeEntryRequest
	if err := decodeBody(r, &body); err != nil {
		s.respondBodyError(w, r, err)
		return
	}

	created, err := s.entries.CreateManual(r.Context(), userID, body.toInput())
	if err != nil {
		s.respondError(w, r, err, "project not found")
		return
	}
	writeJSON(w, http.StatusCreated, entryToResponse(created))
}

// UpdateTimeEntry handles PATCH /time-entries/{id}.
func (s *Server) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id, err := bindID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	var body UpdateTimeEntryRequest
	if err := decodeBody(r, &body); err != nil {
		s.respondBodyError(w, r, err)
		return
	}

	updated, err := s.entries.Update(r.Context(), userID, id, body.toPatch())
	if err != nil {
		s.respondError(w, r, err, entryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(updated))
}

// DeleteTimeEntry handles DELETE /time-entries/{id}.
func (s *Server) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id, err := bindID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	if err := s.entries.Delete(r.Context(), userID, id); err != nil {
		s.respondError(w, r, err, entryNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
