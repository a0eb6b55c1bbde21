package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/timekeeper/internal/domain"
)

// EntryRepo defines the persistence operations for TimeEntries.
// Every read joins the project and client so callers get display metadata
// without a second query.
type EntryRepo interface {
	// Create inserts a new entry and returns the persisted record.
	// Returns domain.ErrConflict if the entry has no end time and the user
	// already has a running entry.
	Create(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error)

	// GetByID retrieves a single entry by its UUID regardless of owner, so
	// the service can tell a missing entry from someone else's.
	// Returns domain.ErrNotFound if no entry with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TimeEntry, error)

	// List returns the user's entries whose start_time falls inside the
	// filter range, newest first, up to filter.Limit rows (0 = all).
	List(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error)

	// GetActive returns the user's running entry.
	// Returns domain.ErrNotFound when the user has no running entry.
	GetActive(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error)

	// Update overwrites the mutable fields of an entry, scoped to e.UserID.
	// Returns domain.ErrNotFound if no such entry exists for that user.
	Update(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error)

	// Stop closes a running entry. The write only applies while end_time is
	// still NULL, so of two concurrent stops exactly one succeeds.
	// Returns domain.ErrNotFound if the entry is missing or already stopped.
	Stop(ctx context.Context, id uuid.UUID, end time.Time, duration int64) (domain.TimeEntry, error)

	// Delete removes an entry by ID, scoped to userID.
	// Returns domain.ErrNotFound if no such entry exists for that user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// pgEntryRepo is the Postgres implementation of EntryRepo.
type pgEntryRepo struct {
	db db
}

// NewEntryRepo constructs an EntryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEntryRepo(db db) EntryRepo {
	return &pgEntryRepo{db: db}
}

// entryColumns selects an entry (alias e) with its project (p) and client (c).
const entryColumns = `
	e.id, e.user_id, e.project_id, e.description, e.start_time, e.end_time,
	e.duration, e.is_manual, e.tags, e.created_at, e.updated_at,
	p.name, p.color, p.client_id, COALESCE(c.name, '')`

const entryJoins = `
	JOIN projects p ON p.id = e.project_id
	LEFT JOIN clients c ON c.id = p.client_id`

// Create inserts an entry row and returns it joined with its project.
func (r *pgEntryRepo) Create(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	const q = `
		WITH written AS (
			INSERT INTO time_entries
				(user_id, project_id, description, start_time, end_time, duration, is_manual, tags)
			VALUES
				(@user_id, @project_id, @description, @start_time, @end_time, @duration, @is_manual, @tags)
			RETURNING *
		)
		SELECT ` + entryColumns + `
		FROM written e` + entryJoins

	row := r.db.QueryRow(ctx, q, entryArgs(e))
	result, err := scanEntry(row)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("repo.EntryRepo.Create: %w", mapWriteError(err))
	}
	return result, nil
}

// GetByID retrieves an entry by primary key.
func (r *pgEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TimeEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM time_entries e` + entryJoins + `
		WHERE e.id = @id`

	result, err := scanEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("repo.EntryRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns entries for the user in the filter range, newest first.
// NULL bounds disable the matching predicate and LIMIT NULL means no limit.
func (r *pgEntryRepo) List(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM time_entries e` + entryJoins + `
		WHERE e.user_id = @user_id
		  AND (@from::timestamptz IS NULL OR e.start_time >= @from::timestamptz)
		  AND (@to::timestamptz   IS NULL OR e.start_time <= @to::timestamptz)
		ORDER BY e.start_time DESC, e.id
		LIMIT @limit`

	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}

	args := pgx.NamedArgs{
		"user_id": userID,
		"from":    f.Range.From,
		"to":      f.Range.To,
		"limit":   limit,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.List: %w", err)
	}
	defer rows.Close()

	entries := []domain.TimeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EntryRepo.List: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.List: rows: %w", err)
	}
	return entries, nil
}

// GetActive returns the single entry with a NULL end_time for the user.
func (r *pgEntryRepo) GetActive(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM time_entries e` + entryJoins + `
		WHERE e.user_id = @user_id AND e.end_time IS NULL`

	result, err := scanEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("repo.EntryRepo.GetActive: %w", err)
	}
	return result, nil
}

// Update overwrites the mutable fields of an entry and returns the updated record.
func (r *pgEntryRepo) Update(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	const q = `
		WITH written AS (
			UPDATE time_entries
			SET project_id  = @project_id,
			    description = @description,
			    start_time  = @start_time,
			    end_time    = @end_time,
			    duration    = @duration,
			    is_manual   = @is_manual,
			    tags        = @tags,
			    updated_at  = now()
			WHERE id = @id AND user_id = @user_id
			RETURNING *
		)
		SELECT ` + entryColumns + `
		FROM written e` + entryJoins

	args := entryArgs(e)
	args["id"] = e.ID

	result, err := scanEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("repo.EntryRepo.Update: %w", mapWriteError(err))
	}
	return result, nil
}

// Stop sets end_time and duration on a still-running entry.
func (r *pgEntryRepo) Stop(ctx context.Context, id uuid.UUID, end time.Time, duration int64) (domain.TimeEntry, error) {
	const q = `
		WITH written AS (
			UPDATE time_entries
			SET end_time   = @end_time,
			    duration   = @duration,
			    updated_at = now()
			WHERE id = @id AND end_time IS NULL
			RETURNING *
		)
		SELECT ` + entryColumns + `
		FROM written e` + entryJoins

	args := pgx.NamedArgs{
		"id":       id,
		"end_time": end,
		"duration": duration,
	}

	result, err := scanEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("repo.EntryRepo.Stop: %w", err)
	}
	return result, nil
}

// Delete removes an entry by primary key, scoped to its owner.
func (r *pgEntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM time_entries WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.EntryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EntryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// entryArgs builds the named args shared by Create and Update.
func entryArgs(e domain.TimeEntry) pgx.NamedArgs {
	tags := e.Tags
	if tags == nil {
		tags = []string{} // column is NOT NULL
	}
	return pgx.NamedArgs{
		"user_id":     e.UserID,
		"project_id":  e.ProjectID,
		"description": e.Description,
		"start_time":  e.StartTime,
		"end_time":    e.EndTime, // nil becomes NULL
		"duration":    e.Duration,
		"is_manual":   e.IsManual,
		"tags":        tags,
	}
}

// scanEntry maps a single joined row into a domain.TimeEntry.
func scanEntry(s scanner) (domain.TimeEntry, error) {
	var (
		e         domain.TimeEntry
		id        pgtype.UUID
		userID    pgtype.UUID
		projectID pgtype.UUID
		clientID  pgtype.UUID
		endTime   pgtype.Timestamptz
		duration  pgtype.Int8
	)

	err := s.Scan(
		&id, &userID, &projectID, &e.Description, &e.StartTime, &endTime,
		&duration, &e.IsManual, &e.Tags, &e.CreatedAt, &e.UpdatedAt,
		&e.Project.Name, &e.Project.Color, &clientID, &e.Project.ClientName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TimeEntry{}, domain.ErrNotFound
		}
		return domain.TimeEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.UserID = uuid.UUID(userID.Bytes)
	e.ProjectID = uuid.UUID(projectID.Bytes)
	e.Project.ID = e.ProjectID
	e.Project.ClientID = optionalUUID(clientID)
	if endTime.Valid {
		et := endTime.Time
		e.EndTime = &et
	}
	if duration.Valid {
		d := duration.Int64
		e.Duration = &d
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}
