package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/repo"
)

// dailyDateLayout is the bucket key for the daily report.
const dailyDateLayout = "2006-01-02"

// ReportService aggregates a user's time entries. It only reads.
// Missing durations (running timers) count as zero seconds but still count
// as entries. No report errors on an empty range.
type ReportService struct {
	entries  repo.EntryRepo
	projects repo.ProjectRepo
}

// NewReportService constructs a ReportService backed by the provided repos.
func NewReportService(entries repo.EntryRepo, projects repo.ProjectRepo) *ReportService {
	return &ReportService{entries: entries, projects: projects}
}

// Summary returns total hours and entry count for entries starting in r.
func (s *ReportService) Summary(ctx context.Context, userID uuid.UUID, r domain.DateRange) (domain.Summary, error) {
	entries, err := s.entries.List(ctx, userID, domain.EntryFilter{Range: r})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("service.ReportService.Summary: %w", err)
	}

	var total int64
	for _, e := range entries {
		total += e.Seconds()
	}

	return domain.Summary{
		TotalHours:   domain.Hours(total),
		TotalEntries: len(entries),
		DateRange:    r,
	}, nil
}

// ByProject returns one row for every project the user owns, in project
// creation order, including projects with no entries in r.
// Revenue is hours * hourly rate rounded to cents, computed in decimal.
func (s *ReportService) ByProject(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.ProjectReport, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ReportService.ByProject: %w", err)
	}
	entries, err := s.entries.List(ctx, userID, domain.EntryFilter{Range: r})
	if err != nil {
		return nil, fmt.Errorf("service.ReportService.ByProject: %w", err)
	}

	type tally struct {
		seconds int64
		count   int
	}
	byProject := make(map[uuid.UUID]*tally, len(projects))
	for _, e := range entries {
		t, ok := byProject[e.ProjectID]
		if !ok {
			t = &tally{}
			byProject[e.ProjectID] = t
		}
		t.seconds += e.Seconds()
		t.count++
	}

	out := make([]domain.ProjectReport, 0, len(projects))
	for _, p := range projects {
		var t tally
		if found, ok := byProject[p.ID]; ok {
			t = *found
		}
		out = append(out, domain.ProjectReport{
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			ClientName:   p.ClientName,
			Color:        p.Color,
			TotalHours:   domain.Hours(t.seconds),
			Revenue:      revenue(t.seconds, p.HourlyRate),
			EntriesCount: t.count,
		})
	}
	return out, nil
}

// Daily returns per-day totals keyed by the UTC calendar date of each
// entry's start time, in ascending date order. Days without entries are
// omitted.
func (s *ReportService) Daily(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyReport, error) {
	entries, err := s.entries.List(ctx, userID, domain.EntryFilter{Range: r})
	if err != nil {
		return nil, fmt.Errorf("service.ReportService.Daily: %w", err)
	}

	type bucket struct {
		seconds int64
		count   int
	}
	buckets := make(map[string]*bucket)
	for _, e := range entries {
		day := e.StartTime.UTC().Format(dailyDateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.seconds += e.Seconds()
		b.count++
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	// ISO dates sort chronologically as strings.
	sort.Strings(days)

	out := make([]domain.DailyReport, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		out = append(out, domain.DailyReport{
			Date:       day,
			TotalHours: domain.Hours(b.seconds),
			Entries:    b.count,
		})
	}
	return out, nil
}

// revenue returns seconds/3600 * rate rounded to two places, or zero when
// the project is not billable.
func revenue(seconds int64, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil || seconds == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(seconds).
		Mul(*rate).
		Div(decimal.NewFromInt(domain.SecondsPerHour)).
		Round(2)
}
