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

// ProjectRepo defines the persistence operations for Projects.
// Time tracking only reads projects; Create exists for seeding and tests.
type ProjectRepo interface {
	// Create inserts a new project and returns the persisted record, with the
	// client name joined in when ClientID is set.
	Create(ctx context.Context, p domain.Project) (domain.Project, error)

	// GetByID retrieves a project by primary key regardless of owner.
	// Returns domain.ErrNotFound if no project with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error)

	// ListByUser returns every project owned by userID, archived ones
	// included, ordered by created_at then id.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
}

// pgProjectRepo is the Postgres implementation of ProjectRepo.
type pgProjectRepo struct {
	db db
}

// NewProjectRepo constructs a ProjectRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewProjectRepo(db db) ProjectRepo {
	return &pgProjectRepo{db: db}
}

const projectColumns = `
	p.id, p.user_id, p.client_id, COALESCE(c.name, ''), p.name,
	p.hourly_rate::text, p.color, p.is_archived, p.created_at, p.updated_at`

// Create inserts a project row. The CTE lets a single round trip return the
// inserted row together with its client's name.
func (r *pgProjectRepo) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO projects (user_id, client_id, name, hourly_rate, color, is_archived)
			VALUES (@user_id, @client_id, @name, @hourly_rate::text::numeric, @color, @is_archived)
			RETURNING *
		)
		SELECT ` + projectColumns + `
		FROM inserted p
		LEFT JOIN clients c ON c.id = p.client_id`

	color := p.Color
	if color == "" {
		color = "#7ED321"
	}

	args := pgx.NamedArgs{
		"user_id":     p.UserID,
		"client_id":   p.ClientID, // nil becomes NULL
		"name":        p.Name,
		"hourly_rate": rateArg(p.HourlyRate),
		"color":       color,
		"is_archived": p.IsArchived,
	}

	result, err := scanProject(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Project{}, fmt.Errorf("repo.ProjectRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a project by primary key.
func (r *pgProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	const q = `
		SELECT ` + projectColumns + `
		FROM projects p
		LEFT JOIN clients c ON c.id = p.client_id
		WHERE p.id = @id`

	result, err := scanProject(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Project{}, fmt.Errorf("repo.ProjectRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns the user's projects in creation order.
func (r *pgProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	const q = `
		SELECT ` + projectColumns + `
		FROM projects p
		LEFT JOIN clients c ON c.id = p.client_id
		WHERE p.user_id = @user_id
		ORDER BY p.created_at, p.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ProjectRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ProjectRepo.ListByUser: scan: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ProjectRepo.ListByUser: rows: %w", err)
	}
	return projects, nil
}

// scanProject maps a single database row into a domain.Project.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p        domain.Project
		id       pgtype.UUID
		userID   pgtype.UUID
		clientID pgtype.UUID
		rate     pgtype.Text
	)

	err := s.Scan(&id, &userID, &clientID, &p.ClientName, &p.Name,
		&rate, &p.Color, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.UserID = uuid.UUID(userID.Bytes)
	p.ClientID = optionalUUID(clientID)
	if p.HourlyRate, err = parseRate(rate); err != nil {
		return domain.Project{}, fmt.Errorf("parse hourly_rate: %w", err)
	}
	return p, nil
}
