package service_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockProjectRepo is a hand-written test double for repo.ProjectRepo.
// Each method is a function field; set only the ones your test needs.
type mockProjectRepo struct {
	create     func(ctx context.Context, p domain.Project) (domain.Project, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Project, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	return m.create(ctx, p)
}
func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	return m.getByID(ctx, id)
}
func (m *mockProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	return m.listByUser(ctx, userID)
}

// compile-time check: mockProjectRepo must satisfy repo.ProjectRepo.
var _ repo.ProjectRepo = (*mockProjectRepo)(nil)

// projectsOf returns a mockProjectRepo that serves the given projects.
func projectsOf(projects ...domain.Project) *mockProjectRepo {
	return &mockProjectRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Project, error) {
			for _, p := range projects {
				if p.ID == id {
					return p, nil
				}
			}
			return domain.Project{}, domain.ErrNotFound
		},
		listByUser: func(_ context.Context, userID uuid.UUID) ([]domain.Project, error) {
			out := []domain.Project{}
			for _, p := range projects {
				if p.UserID == userID {
					out = append(out, p)
				}
			}
			return out, nil
		},
	}
}

// mockEntryRepo is a hand-written test double for repo.EntryRepo.
type mockEntryRepo struct {
	create    func(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.TimeEntry, error)
	list      func(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error)
	getActive func(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error)
	update    func(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error)
	stop      func(ctx context.Context, id uuid.UUID, end time.Time, duration int64) (domain.TimeEntry, error)
	delete    func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockEntryRepo) Create(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	return m.create(ctx, e)
}
func (m *mockEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TimeEntry, error) {
	return m.getByID(ctx, id)
}
func (m *mockEntryRepo) List(ctx context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error) {
	return m.list(ctx, userID, f)
}
func (m *mockEntryRepo) GetActive(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error) {
	return m.getActive(ctx, userID)
}
func (m *mockEntryRepo) Update(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	return m.update(ctx, e)
}
func (m *mockEntryRepo) Stop(ctx context.Context, id uuid.UUID, end time.Time, duration int64) (domain.TimeEntry, error) {
	return m.stop(ctx, id, end, duration)
}
func (m *mockEntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

// compile-time check: mockEntryRepo must satisfy repo.EntryRepo.
var _ repo.EntryRepo = (*mockEntryRepo)(nil)

// ---- in-memory store -------------------------------------------------------

// memEntryRepo is an in-memory repo.EntryRepo that enforces the same
// one-running-entry-per-user rule as the Postgres partial unique index.
// Scenario tests use it where chaining function mocks would be unreadable.
type memEntryRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]domain.TimeEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: map[uuid.UUID]domain.TimeEntry{}}
}

func (m *memEntryRepo) Create(_ context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Running() {
		for _, other := range m.entries {
			if other.UserID == e.UserID && other.Running() {
				return domain.TimeEntry{}, domain.ErrConflict
			}
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	m.entries[e.ID] = e
	return e, nil
}

func (m *memEntryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	return e, nil
}

func (m *memEntryRepo) List(_ context.Context, userID uuid.UUID, f domain.EntryFilter) ([]domain.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.TimeEntry{}
	for _, e := range m.entries {
		if e.UserID == userID && f.Range.Contains(e.StartTime) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.TimeEntry) int { return b.StartTime.Compare(a.StartTime) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memEntryRepo) GetActive(_ context.Context, userID uuid.UUID) (domain.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID == userID && e.Running() {
			return e, nil
		}
	}
	return domain.TimeEntry{}, domain.ErrNotFound
}

func (m *memEntryRepo) Update(_ context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.entries[e.ID]
	if !ok || current.UserID != e.UserID {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	m.entries[e.ID] = e
	return e, nil
}

func (m *memEntryRepo) Stop(_ context.Context, id uuid.UUID, end time.Time, duration int64) (domain.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || !e.Running() {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	e.EndTime = &end
	e.Duration = &duration
	m.entries[id] = e
	return e, nil
}

func (m *memEntryRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// running counts the user's entries with no end time.
func (m *memEntryRepo) running(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.UserID == userID && e.Running() {
			n++
		}
	}
	return n
}

var _ repo.EntryRepo = (*memEntryRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// discardLogger keeps service logs out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable clock for timer tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func ptr[T any](v T) *T { return &v }
