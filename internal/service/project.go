// Package service contains the business logic for the Timekeeper API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/repo"
)

// ProjectValidator confirms that a project referenced by a time entry exists,
// belongs to the requesting user, and is still open for tracking.
type ProjectValidator struct {
	projects repo.ProjectRepo
}

// NewProjectValidator constructs a ProjectValidator backed by the provided ProjectRepo.
func NewProjectValidator(projects repo.ProjectRepo) *ProjectValidator {
	return &ProjectValidator{projects: projects}
}

// ValidateProjectOwnership returns the project's metadata when userID may
// track time against it.
// Returns domain.ErrNotFound if the project does not exist,
// domain.ErrForbidden if another user owns it, and domain.ErrValidation if it
// is archived.
func (v *ProjectValidator) ValidateProjectOwnership(ctx context.Context, userID, projectID uuid.UUID) (domain.Project, error) {
	p, err := v.projects.GetByID(ctx, projectID)
	if err != nil {
		return domain.Project{}, fmt.Errorf("service.ProjectValidator.ValidateProjectOwnership: %w", err)
	}
	if p.UserID != userID {
		return domain.Project{}, fmt.Errorf("service.ProjectValidator.ValidateProjectOwnership: %w", domain.ErrForbidden)
	}
	if p.IsArchived {
		return domain.Project{}, fmt.Errorf("%w: project is archived", domain.ErrValidation)
	}
	return p, nil
}
