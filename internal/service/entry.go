package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/repo"
)

// EntryService implements the time entry lifecycle: manual entries and the
// start/stop timer protocol.
//
// A user is either idle (no entry with a nil EndTime) or running (exactly
// one). The pre-checks here produce a clear error early; the guarantee itself
// comes from the store, which rejects a second running entry with
// domain.ErrConflict.
type EntryService struct {
	entries  repo.EntryRepo
	projects *ProjectValidator
	log      *slog.Logger
	now      func() time.Time
}

// NewEntryService constructs an EntryService backed by the provided repo and validator.
// A nil logger falls back to slog.Default().
func NewEntryService(entries repo.EntryRepo, projects *ProjectValidator, log *slog.Logger) *EntryService {
	if log == nil {
		log = slog.Default()
	}
	return &EntryService{entries: entries, projects: projects, log: log, now: time.Now}
}

// WithClock replaces the wall clock used for timer start and stop times.
func (s *EntryService) WithClock(now func() time.Time) *EntryService {
	s.now = now
	return s
}

// clock returns the current time truncated to the store's microsecond
// precision, so durations computed here match the persisted timestamps.
func (s *EntryService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// List returns the user's entries inside the filter range, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *EntryService) List(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error) {
	entries, err := s.entries.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("service.EntryService.List: %w", err)
	}
	if entries == nil {
		return []domain.TimeEntry{}, nil
	}
	return entries, nil
}

// Get returns a single entry.
// Returns domain.ErrNotFound if it does not exist and domain.ErrForbidden if
// another user owns it.
func (s *EntryService) Get(ctx context.Context, userID, id uuid.UUID) (domain.TimeEntry, error) {
	return s.owned(ctx, "Get", userID, id)
}

// CreateManual validates and persists an entry supplied in full by the caller.
// Duration is taken from the input when given, otherwise derived from the
// timestamps. IsManual defaults to true.
// An input without an end time starts a timer and returns domain.ErrConflict
// if the user already has one running.
func (s *EntryService) CreateManual(ctx context.Context, userID uuid.UUID, in domain.EntryInput) (domain.TimeEntry, error) {
	if err := validateInput(in); err != nil {
		return domain.TimeEntry{}, err
	}
	if _, err := s.projects.ValidateProjectOwnership(ctx, userID, in.ProjectID); err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.CreateManual: %w", err)
	}

	isManual := true
	if in.IsManual != nil {
		isManual = *in.IsManual
	}

	entry := domain.TimeEntry{
		UserID:      userID,
		ProjectID:   in.ProjectID,
		Description: strings.TrimSpace(in.Description),
		StartTime:   storedTime(in.StartTime),
		EndTime:     utcPtr(in.EndTime),
		IsManual:    isManual,
		Tags:        normalizeTags(in.Tags),
	}
	entry.Duration = domain.ResolveDuration(entry.StartTime, entry.EndTime, in.Duration).Value()

	if entry.Running() {
		if err := s.ensureIdle(ctx, userID); err != nil {
			return domain.TimeEntry{}, fmt.Errorf("service.EntryService.CreateManual: %w", err)
		}
	}

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.CreateManual: %w", err)
	}
	return created, nil
}

// Update applies a partial patch to an entry. Nil patch fields are left unchanged.
// An explicit duration in the patch is stored as given. Supplying both
// timestamps re-derives the duration. Moving one timestamp of a closed entry
// re-derives it only while the stored value is still the derived one, so an
// explicit override survives.
// A new project must belong to the same user: an unknown project is a
// validation error, another user's project is domain.ErrForbidden.
func (s *EntryService) Update(ctx context.Context, userID, id uuid.UUID, patch domain.EntryPatch) (domain.TimeEntry, error) {
	entry, err := s.owned(ctx, "Update", userID, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}

	if patch.ProjectID != nil && *patch.ProjectID != entry.ProjectID {
		if _, err := s.projects.ValidateProjectOwnership(ctx, userID, *patch.ProjectID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.TimeEntry{}, fmt.Errorf("%w: project not found", domain.ErrValidation)
			}
			return domain.TimeEntry{}, fmt.Errorf("service.EntryService.Update: %w", err)
		}
		entry.ProjectID = *patch.ProjectID
	}

	derived := entry.EndTime != nil && entry.Duration != nil &&
		*entry.Duration == domain.ElapsedSeconds(entry.StartTime, *entry.EndTime)

	if patch.StartTime != nil {
		entry.StartTime = storedTime(*patch.StartTime)
	}
	if patch.EndTime != nil {
		entry.EndTime = utcPtr(patch.EndTime)
	}
	if patch.Description != nil {
		entry.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Tags != nil {
		entry.Tags = normalizeTags(*patch.Tags)
	}
	if patch.IsManual != nil {
		entry.IsManual = *patch.IsManual
	}

	switch {
	case patch.Duration != nil:
		entry.Duration = domain.ResolveDuration(entry.StartTime, entry.EndTime, patch.Duration).Value()
	case patch.StartTime != nil && patch.EndTime != nil,
		patch.TouchesInterval() && entry.EndTime != nil && (derived || entry.Duration == nil):
		entry.Duration = domain.ResolveDuration(entry.StartTime, entry.EndTime, nil).Value()
	}

	if err := validateEntry(entry); err != nil {
		return domain.TimeEntry{}, err
	}

	updated, err := s.entries.Update(ctx, entry)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes an entry permanently.
// Returns domain.ErrNotFound if it does not exist and domain.ErrForbidden if
// another user owns it.
func (s *EntryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, "Delete", userID, id); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.EntryService.Delete: %w", err)
	}
	return nil
}

// StartTimer moves the user from idle to running on projectID.
// Returns domain.ErrConflict if a timer is already running, including when a
// concurrent start wins the race at the store.
func (s *EntryService) StartTimer(ctx context.Context, userID, projectID uuid.UUID, description string) (domain.TimeEntry, error) {
	if projectID == uuid.Nil {
		return domain.TimeEntry{}, fmt.Errorf("%w: projectId is required", domain.ErrValidation)
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return domain.TimeEntry{}, fmt.Errorf("%w: description is too long", domain.ErrValidation)
	}

	if err := s.ensureIdle(ctx, userID); err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.StartTimer: %w", err)
	}
	if _, err := s.projects.ValidateProjectOwnership(ctx, userID, projectID); err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.StartTimer: %w", err)
	}

	created, err := s.entries.Create(ctx, domain.TimeEntry{
		UserID:      userID,
		ProjectID:   projectID,
		Description: description,
		StartTime:   s.clock(),
		Tags:        []string{},
	})
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.StartTimer: %w", err)
	}

	s.log.InfoContext(ctx, "timer started",
		"user_id", userID,
		"entry_id", created.ID,
		"project_id", projectID,
	)
	return created, nil
}

// StopTimer moves the user from running to idle, closing the running entry
// with end = now and duration = floor(end - start) seconds.
// Returns domain.ErrNotFound if no timer is running.
func (s *EntryService) StopTimer(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error) {
	active, err := s.entries.GetActive(ctx, userID)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.StopTimer: %w", err)
	}

	end := s.clock()
	secs := domain.ElapsedSeconds(active.StartTime, end)
	if secs < 0 {
		// A start time in the future can only come from clock skew between
		// server instances.
		secs = 0
	}

	stopped, err := s.entries.Stop(ctx, active.ID, end, secs)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.StopTimer: %w", err)
	}

	s.log.InfoContext(ctx, "timer stopped",
		"user_id", userID,
		"entry_id", stopped.ID,
		"duration_s", secs,
	)
	return stopped, nil
}

// ActiveTimer returns the user's running entry. The bool is false, with a
// nil error, when the user is idle.
func (s *EntryService) ActiveTimer(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, bool, error) {
	active, err := s.entries.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TimeEntry{}, false, nil
		}
		return domain.TimeEntry{}, false, fmt.Errorf("service.EntryService.ActiveTimer: %w", err)
	}
	return active, true, nil
}

// Now exposes the service clock so handlers can report elapsed time
// consistently with the timestamps the service writes.
func (s *EntryService) Now() time.Time {
	return s.clock()
}

// owned loads an entry and checks that userID owns it.
func (s *EntryService) owned(ctx context.Context, op string, userID, id uuid.UUID) (domain.TimeEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.%s: %w", op, err)
	}
	if entry.UserID != userID {
		return domain.TimeEntry{}, fmt.Errorf("service.EntryService.%s: %w", op, domain.ErrForbidden)
	}
	return entry, nil
}

// ensureIdle returns domain.ErrConflict if the user has a running entry.
func (s *EntryService) ensureIdle(ctx context.Context, userID uuid.UUID) error {
	_, err := s.entries.GetActive(ctx, userID)
	switch {
	case err == nil:
		return domain.ErrConflict
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// validateInput enforces the rules for a new manual entry.
func validateInput(in domain.EntryInput) error {
	if in.ProjectID == uuid.Nil {
		return fmt.Errorf("%w: projectId is required", domain.ErrValidation)
	}
	if in.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", domain.ErrValidation)
	}
	return validateEntry(domain.TimeEntry{
		Description: strings.TrimSpace(in.Description),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Duration:    in.Duration,
	})
}

// validateEntry enforces business rules common to both create and update.
//   - Description must not exceed MaxDescriptionLength characters.
//   - EndTime, if set, must not be before StartTime.
//   - Duration, if set, must not be negative.
func validateEntry(e domain.TimeEntry) error {
	if utf8.RuneCountInString(e.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description is too long", domain.ErrValidation)
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return fmt.Errorf("%w: endTime must not be before startTime", domain.ErrValidation)
	}
	if e.Duration != nil && *e.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", domain.ErrValidation)
	}
	return nil
}

// normalizeTags trims, de-duplicates, and sorts tags. Order carries no
// meaning, so the stored form is canonical.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// storedTime drops what Postgres cannot keep, matching clock().
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := storedTime(*t)
	return &u
}
