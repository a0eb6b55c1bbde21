// export.go implements GET /time-entries/export.
// Returns the user's entries as a flat table, oldest first.
// Supports ?format=csv (CSV) or default (JSON), plus the usual date range.

package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/middleware"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"entry_id", "project_name", "client_name", "description",
	"start_time", "end_time", "duration_seconds", "is_manual", "tags",
}

// ExportTimeEntries handles GET /time-entries/export.
func (s *Server) ExportTimeEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		requestError(w, "invalid format for parameter format")
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json", "":
		default:
			requestError(w, "format must be json or csv")
			return
		}
	}

	rng, err := bindDateRange(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	rows, err := s.export.Export(r.Context(), userID, rng)
	if err != nil {
		s.respondError(w, r, err, "")
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON wire type.
// Empty client names are omitted.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		id, _ := uuid.Parse(r.EntryID)
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, ExportRow{
			EntryID:         id,
			ProjectName:     r.ProjectName,
			ClientName:      optionalString(r.ClientName),
			Description:     r.Description,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			DurationSeconds: r.DurationSeconds,
			IsManual:        r.IsManual,
			Tags:            tags,
		})
	}
	return out
}

// writeCSV encodes rows as an attachment.
// Tags within a row are pipe-separated ("|") to keep each entry on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="time-entries.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	buf.WriteTo(w)
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil time pointers are encoded as empty strings.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.EntryID,
		r.ProjectName,
		r.ClientName,
		r.Description,
		r.StartTime.UTC().Format(time.RFC3339),
		formatOptionalTime(r.EndTime),
		strconv.FormatInt(r.DurationSeconds, 10),
		strconv.FormatBool(r.IsManual),
		strings.Join(r.Tags, "|"),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
