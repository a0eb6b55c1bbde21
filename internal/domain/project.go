package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is read-only metadata as far as time tracking is concerned.
// HourlyRate is nil when the project is not billable.
type Project struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ClientID   *uuid.UUID
	ClientName string
	Name       string
	HourlyRate *decimal.Decimal
	Color      string
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ref returns the display metadata joined onto time entries.
func (p Project) Ref() ProjectRef {
	return ProjectRef{
		ID:         p.ID,
		Name:       p.Name,
		Color:      p.Color,
		ClientID:   p.ClientID,
		ClientName: p.ClientName,
	}
}

// Client is the customer a project is billed to.
type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     string
	Color     string
	CreatedAt time.Time
}
