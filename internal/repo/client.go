package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/timekeeper/internal/domain"
)

// ClientRepo defines the persistence operations for Clients that time
// tracking needs: seeding and display-name lookups happen through projects.
type ClientRepo interface {
	// Upsert inserts a client keyed by (user_id, name), or returns the
	// existing row if that user already has a client with that name.
	Upsert(ctx context.Context, c domain.Client) (domain.Client, error)
}

// pgClientRepo is the Postgres implementation of ClientRepo.
type pgClientRepo struct {
	db db
}

// NewClientRepo constructs a ClientRepo backed by the provided db connection.
func NewClientRepo(db db) ClientRepo {
	return &pgClientRepo{db: db}
}

// Upsert inserts a client or returns the existing row on name conflict.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when
// the conflict handler skips the insert. Without it, RETURNING returns
// nothing on DO NOTHING conflicts.
func (r *pgClientRepo) Upsert(ctx context.Context, c domain.Client) (domain.Client, error) {
	const q = `
		INSERT INTO clients (user_id, name, email, color)
		VALUES (@user_id, @name, @email, @color)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, user_id, name, email, color, created_at`

	color := c.Color
	if color == "" {
		color = "#4A90E2"
	}

	args := pgx.NamedArgs{
		"user_id": c.UserID,
		"name":    c.Name,
		"email":   c.Email,
		"color":   color,
	}

	result, err := scanClient(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Client{}, fmt.Errorf("repo.ClientRepo.Upsert: %w", err)
	}
	return result, nil
}

// scanClient maps a single database row into a domain.Client.
func scanClient(s scanner) (domain.Client, error) {
	var (
		c      domain.Client
		id     pgtype.UUID
		userID pgtype.UUID
	)
	err := s.Scan(&id, &userID, &c.Name, &c.Email, &c.Color, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, domain.ErrNotFound
		}
		return domain.Client{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.UserID = uuid.UUID(userID.Bytes)
	return c, nil
}
