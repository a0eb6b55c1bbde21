package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/timekeeper/internal/domain"
)

// Wire types mirror the schemas in spec/openapi.yaml.

type HealthResponse struct {
	Status string `json:"status"`
}

type ClientRef struct {
	ID   openapi_types.UUID `json:"id"`
	Name string             `json:"name"`
}

type ProjectRef struct {
	ID     openapi_types.UUID `json:"id"`
	Name   string             `json:"name"`
	Color  string             `json:"color"`
	Client *ClientRef         `json:"client,omitempty"`
}

type TimeEntry struct {
	ID          openapi_types.UUID `json:"id"`
	UserID      openapi_types.UUID `json:"userId"`
	ProjectID   openapi_types.UUID `json:"projectId"`
	Description string             `json:"description"`
	StartTime   time.Time          `json:"startTime"`
	EndTime     *time.Time         `json:"endTime"`
	Duration    *int64             `json:"duration"`
	IsManual    bool               `json:"isManual"`
	Tags        []string           `json:"tags"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Project     ProjectRef         `json:"project"`
}

// ActiveTimer is the running entry plus seconds elapsed since it started.
type ActiveTimer struct {
	TimeEntry
	ElapsedSeconds int64 `json:"elapsedSeconds"`
}

type CreateTimeEntryRequest struct {
	ProjectID   openapi_types.UUID `json:"projectId"`
	Description string             `json:"description"`
	StartTime   time.Time          `json:"startTime"`
	EndTime     *time.Time         `json:"endTime,omitempty"`
	Duration    *int64             `json:"duration,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	IsManual    *bool              `json:"isManual,omitempty"`
}

// UpdateTimeEntryRequest is a partial update. Omitted (or null) fields are
// left unchanged.
type UpdateTimeEntryRequest struct {
	ProjectID   *openapi_types.UUID `json:"projectId,omitempty"`
	Description *string             `json:"description,omitempty"`
	StartTime   *time.Time          `json:"startTime,omitempty"`
	EndTime     *time.Time          `json:"endTime,omitempty"`
	Duration    *int64              `json:"duration,omitempty"`
	Tags        *[]string           `json:"tags,omitempty"`
	IsManual    *bool               `json:"isManual,omitempty"`
}

type StartTimerRequest struct {
	ProjectID   openapi_types.UUID `json:"projectId"`
	Description string             `json:"description"`
}

type DateRange struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type SummaryReport struct {
	TotalHours   float64   `json:"totalHours"`
	TotalEntries int       `json:"totalEntries"`
	DateRange    DateRange `json:"dateRange"`
}

type ProjectReport struct {
	ProjectID    openapi_types.UUID `json:"projectId"`
	ProjectName  string             `json:"projectName"`
	ClientName   *string            `json:"clientName,omitempty"`
	Color        string             `json:"color"`
	TotalHours   float64            `json:"totalHours"`
	Revenue      json.Number        `json:"revenue"`
	EntriesCount int                `json:"entriesCount"`
}

type DailyReport struct {
	Date       openapi_types.Date `json:"date"`
	TotalHours float64            `json:"totalHours"`
	Entries    int                `json:"entries"`
}

type ExportRow struct {
	EntryID         openapi_types.UUID `json:"entryId"`
	ProjectName     string             `json:"projectName"`
	ClientName      *string            `json:"clientName,omitempty"`
	Description     string             `json:"description"`
	StartTime       time.Time          `json:"startTime"`
	EndTime         *time.Time         `json:"endTime,omitempty"`
	DurationSeconds int64              `json:"durationSeconds"`
	IsManual        bool               `json:"isManual"`
	Tags            []string           `json:"tags"`
}

// --- mapping helpers --------------------------------------------------------

func entryToResponse(e domain.TimeEntry) TimeEntry {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := TimeEntry{
		ID:          e.ID,
		UserID:      e.UserID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Duration:    e.Duration,
		IsManual:    e.IsManual,
		Tags:        tags,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Project: ProjectRef{
			ID:    e.Project.ID,
			Name:  e.Project.Name,
			Color: e.Project.Color,
		},
	}
	if e.Project.ClientID != nil {
		resp.Project.Client = &ClientRef{ID: *e.Project.ClientID, Name: e.Project.ClientName}
	}
	return resp
}

func entriesToResponse(entries []domain.TimeEntry) []TimeEntry {
	out := make([]TimeEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryToResponse(e))
	}
	return out
}

func (b CreateTimeEntryRequest) toInput() domain.EntryInput {
	return domain.EntryInput{
		ProjectID:   b.ProjectID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Duration:    b.Duration,
		Description: b.Description,
		Tags:        b.Tags,
		IsManual:    b.IsManual,
	}
}

func (b UpdateTimeEntryRequest) toPatch() domain.EntryPatch {
	return domain.EntryPatch{
		ProjectID:   (*uuid.UUID)(b.ProjectID),
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Duration:    b.Duration,
		Description: b.Description,
		Tags:        b.Tags,
		IsManual:    b.IsManual,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
