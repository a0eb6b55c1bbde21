// Package domain contains the core data types for the Timekeeper application.
// It is imported by every other internal package (repo, service, handler) and
// depends only on uuid and decimal.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxDescriptionLength is the longest description accepted on a time entry.
const MaxDescriptionLength = 500

// TimeEntry is one tracked interval of work on a project.
// EndTime is nil while the entry is the user's running timer.
// Duration is in whole seconds and nil until the interval is closed,
// unless the caller supplied one explicitly.
type TimeEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProjectID   uuid.UUID
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	Duration    *int64
	IsManual    bool
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Project is display metadata joined in by the repo on every read.
	Project ProjectRef
}

// ProjectRef is the slice of project and client data shown next to an entry.
type ProjectRef struct {
	ID         uuid.UUID
	Name       string
	Color      string
	ClientID   *uuid.UUID
	ClientName string
}

// Running reports whether e is an active timer.
func (e TimeEntry) Running() bool {
	return e.EndTime == nil
}

// Seconds returns the stored duration, treating a missing value as zero.
func (e TimeEntry) Seconds() int64 {
	if e.Duration == nil {
		return 0
	}
	return *e.Duration
}

// EntryInput carries the fields for a manually created entry.
// IsManual is a pointer so the service can tell "not supplied" from false.
type EntryInput struct {
	ProjectID   uuid.UUID
	StartTime   time.Time
	EndTime     *time.Time
	Duration    *int64
	Description string
	Tags        []string
	IsManual    *bool
}

// EntryPatch is a partial update. Nil fields are left unchanged.
type EntryPatch struct {
	ProjectID   *uuid.UUID
	StartTime   *time.Time
	EndTime     *time.Time
	Duration    *int64
	Description *string
	Tags        *[]string
	IsManual    *bool
}

// TouchesInterval reports whether the patch moves either end of the interval.
func (p EntryPatch) TouchesInterval() bool {
	return p.StartTime != nil || p.EndTime != nil
}
