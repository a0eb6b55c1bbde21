package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/handler"
	"github.com/pkordes/timekeeper/internal/middleware"
)

// ---- mock services ---------------------------------------------------------

// mockEntryServicer is a test double for handler.EntryServicer.
// Set only the method fields your test needs.
type mockEntryServicer struct {
	list         func(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error)
	get          func(ctx context.Context, userID, id uuid.UUID) (domain.TimeEntry, error)
	createManual func(ctx context.Context, userID uuid.UUID, in domain.EntryInput) (domain.TimeEntry, error)
	update       func(ctx context.Context, userID, id uuid.UUID, patch domain.EntryPatch) (domain.TimeEntry, error)
	delete       func(ctx context.Context, userID, id uuid.UUID) error
	startTimer   func(ctx context.Context, userID, projectID uuid.UUID, description string) (domain.TimeEntry, error)
	stopTimer    func(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error)
	activeTimer  func(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, bool, error)
	now          time.Time
}

func (m *mockEntryServicer) List(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error) {
	return m.list(ctx, userID, f)
}
func (m *mockEntryServicer) Get(ctx context.Context, userID, id uuid.UUID) (domain.TimeEntry, error) {
	return m.get(ctx, userID, id)
}
func (m *mockEntryServicer) CreateManual(ctx context.Context, userID uuid.UUID, in domain.EntryInput) (domain.TimeEntry, error) {
	return m.createManual(ctx, userID, in)
}
func (m *mockEntryServicer) Update(ctx context.Context, userID, id uuid.UUID, patch domain.EntryPatch) (domain.TimeEntry, error) {
	return m.update(ctx, userID, id, patch)
}
func (m *mockEntryServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}
func (m *mockEntryServicer) StartTimer(ctx context.Context, userID, projectID uuid.UUID, description string) (domain.TimeEntry, error) {
	return m.startTimer(ctx, userID, projectID, description)
}
func (m *mockEntryServicer) StopTimer(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error) {
	return m.stopTimer(ctx, userID)
}
func (m *mockEntryServicer) ActiveTimer(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, bool, error) {
	return m.activeTimer(ctx, userID)
}
func (m *mockEntryServicer) Now() time.Time { return m.now }

// compile-time check: mockEntryServicer must satisfy handler.EntryServicer.
var _ handler.EntryServicer = (*mockEntryServicer)(nil)

type mockReportServicer struct {
	summary   func(ctx context.Context, userID uuid.UUID, r domain.DateRange) (domain.Summary, error)
	byProject func(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ProjectReport, error)
	daily     func(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyReport, error)
}

func (m *mockReportServicer) Summary(ctx context.Context, userID uuid.UUID, r domain.DateRange) (domain.Summary, error) {
	return m.summary(ctx, userID, r)
}
func (m *mockReportServicer) ByProject(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ProjectReport, error) {
	return m.byProject(ctx, userID, r)
}
func (m *mockReportServicer) Daily(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyReport, error) {
	return m.daily(ctx, userID, r)
}

var _ handler.ReportServicer = (*mockReportServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ExportRow, error) {
	return m.export(ctx, userID, r)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// testUserID is the caller every routed test request authenticates as.
var testUserID = uuid.MustParse("6f1c2a4e-0d3b-4f6a-9a7e-1b2c3d4e5f60")

// asTestUser stands in for the JWT middleware.
func asTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUserID)))
	})
}

// testServices bundles the mocks a routed test can override.
type testServices struct {
	entries *mockEntryServicer
	reports *mockReportServicer
	export  *mockExportServicer
}

// newHTTPHandler wires a Server with the given mocks into the router.
// This mirrors how main.go wires it in production, minus the token check.
func newHTTPHandler(svcs testServices) http.Handler {
	if svcs.entries == nil {
		svcs.entries = &mockEntryServicer{}
	}
	if svcs.reports == nil {
		svcs.reports = &mockReportServicer{}
	}
	if svcs.export == nil {
		svcs.export = &mockExportServicer{}
	}
	srv := handler.NewServer(svcs.entries, svcs.reports, svcs.export, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv.Routes(asTestUser)
}

// do sends one request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// decodeError decodes the error envelope and returns its code.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

var t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func entryFixture() domain.TimeEntry {
	end := t0.Add(time.Hour)
	d := int64(3600)
	clientID := uuid.New()
	projectID := uuid.New()
	return domain.TimeEntry{
		ID:          uuid.New(),
		UserID:      testUserID,
		ProjectID:   projectID,
		Description: "Design review",
		StartTime:   t0,
		EndTime:     &end,
		Duration:    &d,
		IsManual:    true,
		Tags:        []string{"design"},
		CreatedAt:   t0,
		UpdatedAt:   t0,
		Project: domain.ProjectRef{
			ID:         projectID,
			Name:       "Website Redesign",
			Color:      "#7ED321",
			ClientID:   &clientID,
			ClientName: "Acme Corporation",
		},
	}
}
