// Package repo contains all database access logic for the Timekeeper API.
// Each table has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/timekeeper/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// activeTimerIndex is the partial unique index that allows one running
// entry per user. See migrations/00002_create_time_entries.sql.
const activeTimerIndex = "time_entries_one_active_per_user"

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// mapWriteError translates driver errors into domain sentinels.
// A unique violation on the active-timer index becomes domain.ErrConflict.
func mapWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeTimerIndex {
		return domain.ErrConflict
	}
	return err
}

// optionalUUID converts a nullable uuid column into a *uuid.UUID.
func optionalUUID(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

// rateArg renders an optional decimal as text for a ::text::numeric cast.
// nil becomes NULL.
func rateArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// parseRate is the inverse of rateArg for values selected as hourly_rate::text.
func parseRate(t pgtype.Text) (*decimal.Decimal, error) {
	if !t.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(t.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
