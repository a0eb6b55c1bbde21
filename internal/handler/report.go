package handler

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/timekeeper/internal/middleware"
)

// GetSummaryReport handles GET /reports/summary.
func (s *Server) GetSummaryReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	rng, err := bindDateRange(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	sum, err := s.reports.Summary(r.Context(), userID, rng)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, SummaryReport{
		TotalHours:   sum.TotalHours,
		TotalEntries: sum.TotalEntries,
		DateRange:    DateRange{StartDate: sum.DateRange.From, EndDate: sum.DateRange.To},
	})
}

// GetProjectReport handles GET /reports/by-project.
// Revenue is written as a JSON number with exactly two decimals.
func (s *Server) GetProjectReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	rng, err := bindDateRange(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	rows, err := s.reports.ByProject(r.Context(), userID, rng)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}

	out := make([]ProjectReport, 0, len(rows))
	for _, p := range rows {
		out = append(out, ProjectReport{
			ProjectID:    p.ProjectID,
			ProjectName:  p.ProjectName,
			ClientName:   optionalString(p.ClientName),
			Color:        p.Color,
			TotalHours:   p.TotalHours,
			Revenue:      json.Number(p.Revenue.StringFixed(2)),
			EntriesCount: p.EntriesCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetDailyReport handles GET /reports/daily.
func (s *Server) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	rng, err := bindDateRange(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	days, err := s.reports.Daily(r.Context(), userID, rng)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}

	out := make([]DailyReport, 0, len(days))
	for _, d := range days {
		date, err := time.Parse(dateOnly, d.Date)
		if err != nil {
			s.respondError(w, r, err, "")
			return
		}
		out = append(out, DailyReport{
			Date:       openapi_types.Date{Time: date},
			TotalHours: d.TotalHours,
			Entries:    d.Entries,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
