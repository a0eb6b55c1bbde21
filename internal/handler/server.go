// Package handler implements the HTTP handlers for the Timekeeper API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (entry.go, timer.go, report.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/timekeeper/internal/domain"
)

// EntryServicer defines the time entry operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type EntryServicer interface {
	List(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error)
	Get(ctx context.Context, userID, id uuid.UUID) (domain.TimeEntry, error)
	CreateManual(ctx context.Context, userID uuid.UUID, in domain.EntryInput) (domain.TimeEntry, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch domain.EntryPatch) (domain.TimeEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	StartTimer(ctx context.Context, userID, projectID uuid.UUID, description string) (domain.TimeEntry, error)
	StopTimer(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error)
	ActiveTimer(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, bool, error)
	Now() time.Time
}

// ReportServicer defines the aggregate reports the handlers depend on.
type ReportServicer interface {
	Summary(ctx context.Context, userID uuid.UUID, r domain.DateRange) (domain.Summary, error)
	ByProject(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ProjectReport, error)
	Daily(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyReport, error)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	entries EntryServicer
	reports ReportServicer
	export  ExportServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(entries EntryServicer, reports ReportServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{entries: entries, reports: reports, export: export, log: log}
}

// Routes returns the API router. Everything except /healthz and the API
// description is wrapped in authn, which must put the caller's user id in
// the request context (see middleware.Authenticator).
func (s *Server) Routes(authn func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/docs", s.GetDocs)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Route("/time-entries", func(r chi.Router) {
			r.Get("/", s.ListTimeEntries)
			r.Post("/", s.CreateTimeEntry)
			r.Get("/active-timer", s.GetActiveTimer)
			r.Post("/start-timer", s.StartTimer)
			r.Post("/stop-timer", s.StopTimer)
			r.Get("/export", s.ExportTimeEntries)
			r.Get("/{id}", s.GetTimeEntry)
			r.Patch("/{id}", s.UpdateTimeEntry)
			r.Delete("/{id}", s.DeleteTimeEntry)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", s.GetSummaryReport)
			r.Get("/by-project", s.GetProjectReport)
			r.Get("/daily", s.GetDailyReport)
		})
	})

	return r
}
