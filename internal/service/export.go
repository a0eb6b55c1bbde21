package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/repo"
)

// ExportService assembles a flat export of a user's time entries.
type ExportService struct {
	entries repo.EntryRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(entries repo.EntryRepo) *ExportService {
	return &ExportService{entries: entries}
}

// Export returns one ExportRow per entry starting in r, oldest first.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ExportRow, error) {
	entries, err := s.entries.List(ctx, userID, domain.EntryFilter{Range: r})
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, domain.ExportRow{
			EntryID:         e.ID.String(),
			ProjectName:     e.Project.Name,
			ClientName:      e.Project.ClientName,
			Description:     e.Description,
			StartTime:       e.StartTime,
			EndTime:         e.EndTime,
			DurationSeconds: e.Seconds(),
			IsManual:        e.IsManual,
			Tags:            e.Tags,
		})
	}
	// The repo lists newest first; exports read top to bottom in time order.
	slices.Reverse(rows)
	return rows, nil
}
