package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/timekeeper/internal/domain"
	"github.com/pkordes/timekeeper/internal/repo"
	"github.com/pkordes/timekeeper/testutil"
)

// closedEntry returns a finished entry ready for insertion.
func closedEntry(userID, projectID uuid.UUID, start time.Time, secs int64) domain.TimeEntry {
	end := start.Add(time.Duration(secs) * time.Second)
	return domain.TimeEntry{
		UserID:      userID,
		ProjectID:   projectID,
		Description: "Design review",
		StartTime:   start,
		EndTime:     &end,
		Duration:    &secs,
		IsManual:    true,
		Tags:        []string{"design", "meeting"},
	}
}

// runningEntry returns an entry with no end time.
func runningEntry(userID, projectID uuid.UUID, start time.Time) domain.TimeEntry {
	return domain.TimeEntry{UserID: userID, ProjectID: projectID, StartTime: start}
}

func TestEntryRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	got, err := r.entries.Create(context.Background(), closedEntry(userID, p.ID, start, 5400))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, got.ID)
	assert.Equal(t, userID, got.UserID)
	assert.True(t, got.StartTime.Equal(start))
	require.NotNil(t, got.EndTime)
	require.NotNil(t, got.Duration)
	assert.EqualValues(t, 5400, *got.Duration)
	assert.Equal(t, []string{"design", "meeting"}, got.Tags)
	assert.True(t, got.IsManual)
	assert.Equal(t, "Website Redesign", got.Project.Name)
	assert.Equal(t, "Acme Corporation", got.Project.ClientName)
}

func TestEntryRepo_Create_Running(t *testing.T) {
	r := newTestRepos(t)
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	got, err := r.entries.Create(context.Background(), runningEntry(userID, p.ID, time.Now().UTC()))

	require.NoError(t, err)
	assert.Nil(t, got.EndTime)
	assert.Nil(t, got.Duration)
	assert.NotNil(t, got.Tags, "tags should be an empty slice, not nil")
}

// TestEntryRepo_Create_SecondRunning_Conflict relies on the partial unique
// index. The violation aborts the transaction, so nothing runs after it.
func TestEntryRepo_Create_SecondRunning_Conflict(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	_, err := r.entries.Create(ctx, runningEntry(userID, p.ID, time.Now().UTC()))
	require.NoError(t, err)

	_, err = r.entries.Create(ctx, runningEntry(userID, p.ID, time.Now().UTC()))

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEntryRepo_RunningTimersOfDifferentUsers(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	pa := mustCreateProject(t, r, alice, "A")
	pb := mustCreateProject(t, r, bob, "B")

	_, err := r.entries.Create(ctx, runningEntry(alice, pa.ID, time.Now().UTC()))
	require.NoError(t, err)
	_, err = r.entries.Create(ctx, runningEntry(bob, pb.ID, time.Now().UTC()))

	assert.NoError(t, err, "the index is per user")
}

func TestEntryRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.entries.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryRepo_GetActive(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	_, err := r.entries.GetActive(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "idle user has no active entry")

	running, err := r.entries.Create(ctx, runningEntry(userID, p.ID, time.Now().UTC()))
	require.NoError(t, err)

	got, err := r.entries.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, running.ID, got.ID)
}

func TestEntryRepo_List_RangeAndOrder(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	for _, start := range []time.Time{day1, day2, day3} {
		_, err := r.entries.Create(ctx, closedEntry(userID, p.ID, start, 60))
		require.NoError(t, err)
	}
	other := mustCreateProject(t, r, uuid.New(), "Other")
	_, err := r.entries.Create(ctx, closedEntry(other.UserID, other.ID, day2, 60))
	require.NoError(t, err)

	all, err := r.entries.List(ctx, userID, domain.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3, "should return only the user's entries")
	assert.True(t, all[0].StartTime.Equal(day3), "newest first")
	assert.True(t, all[2].StartTime.Equal(day1))

	// Both bounds are inclusive.
	ranged, err := r.entries.List(ctx, userID, domain.EntryFilter{
		Range: domain.DateRange{From: &day2, To: &day3},
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	fromOnly, err := r.entries.List(ctx, userID, domain.EntryFilter{
		Range: domain.DateRange{From: &day3},
	})
	require.NoError(t, err)
	assert.Len(t, fromOnly, 1)

	limited, err := r.entries.List(ctx, userID, domain.EntryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestEntryRepo_Update(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	created, err := r.entries.Create(ctx, closedEntry(userID, p.ID, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 60))
	require.NoError(t, err)

	created.Description = "Updated"
	created.Tags = []string{"billing"}
	d := int64(120)
	created.Duration = &d

	updated, err := r.entries.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Description)
	assert.Equal(t, []string{"billing"}, updated.Tags)
	assert.EqualValues(t, 120, *updated.Duration)
}

func TestEntryRepo_Update_WrongUser(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	created, err := r.entries.Create(ctx, closedEntry(userID, p.ID, time.Now().UTC(), 60))
	require.NoError(t, err)

	created.UserID = uuid.New()
	_, err = r.entries.Update(ctx, created)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryRepo_Stop(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	running, err := r.entries.Create(ctx, runningEntry(userID, p.ID, start))
	require.NoError(t, err)

	end := start.Add(3661 * time.Second)
	stopped, err := r.entries.Stop(ctx, running.ID, end, 3661)

	require.NoError(t, err)
	require.NotNil(t, stopped.EndTime)
	assert.True(t, stopped.EndTime.Equal(end))
	assert.EqualValues(t, 3661, *stopped.Duration)

	_, err = r.entries.Stop(ctx, running.ID, end, 3661)
	assert.ErrorIs(t, err, domain.ErrNotFound, "an entry can only be stopped once")
}

func TestEntryRepo_Delete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	created, err := r.entries.Create(ctx, closedEntry(userID, p.ID, time.Now().UTC(), 60))
	require.NoError(t, err)

	require.NoError(t, r.entries.Delete(ctx, userID, created.ID))

	_, err = r.entries.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryRepo_Delete_WrongUser(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	userID := uuid.New()
	p := mustCreateProject(t, r, userID, "Website Redesign")

	created, err := r.entries.Create(ctx, closedEntry(userID, p.ID, time.Now().UTC(), 60))
	require.NoError(t, err)

	err = r.entries.Delete(ctx, uuid.New(), created.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestEntryRepo_ConcurrentRunningInserts races N inserts of a running entry
// for the same user on separate pool connections. Exactly one may win.
// It cannot use a rolled-back transaction, so it cleans up after itself.
func TestEntryRepo_ConcurrentRunningInserts(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	userID := uuid.New()

	projects := repo.NewProjectRepo(pool)
	entries := repo.NewEntryRepo(pool)

	p, err := projects.Create(ctx, domain.Project{UserID: userID, Name: "Race"})
	require.NoError(t, err)
	t.Cleanup(func() {
		// Entries go with the project via ON DELETE CASCADE.
		_, _ = pool.Exec(context.Background(), `DELETE FROM projects WHERE id = $1`, p.ID)
	})

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := entries.Create(ctx, runningEntry(userID, p.ID, time.Now().UTC()))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
}
