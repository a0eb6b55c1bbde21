package domain

import "time"

// ExportRow is a single row in the time-entry export.
// It is a flat, denormalized view: project and client fields are repeated
// for every entry. DurationSeconds is 0 for running entries.
//
// Tags is sorted alphabetically. Callers that need a joined string
// (e.g. CSV) should join with "|".
type ExportRow struct {
	EntryID         string
	ProjectName     string
	ClientName      string
	Description     string
	StartTime       time.Time
	EndTime         *time.Time
	DurationSeconds int64
	IsManual        bool
	Tags            []string
}
