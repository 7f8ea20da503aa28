package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

func setupRefresher(t *testing.T) (*RefresherService, *sqlite.Store) {
	t.Helper()
	st := setupTestStore(t)
	stats := NewStatsService(st, testLogger())
	return NewRefresherService(st, stats, testLogger()), st
}

func TestRefreshAll(t *testing.T) {
	svc, st := setupRefresher(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedUser(t, st, "user-2")
	seedBook(t, st, "book-1", "Dune")

	now := time.Now().UTC()
	// user-1: one hour yesterday, two hours twenty days ago.
	seedTerminatedSession(t, st, "user-1", "book-1", now.AddDate(0, 0, -1).Add(-time.Hour), now.AddDate(0, 0, -1))
	seedTerminatedSession(t, st, "user-1", "book-1", now.AddDate(0, 0, -20).Add(-2*time.Hour), now.AddDate(0, 0, -20))
	// user-2 has no sessions.

	summary, err := svc.RefreshAll(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Refreshed)
	assert.Equal(t, 0, summary.Failed)

	stats, err := st.GetReadingStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, stats.Last7Days)
	assert.Equal(t, 3*time.Hour, stats.Last30Days)

	empty, err := st.GetReadingStats(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), empty.Last7Days)
	assert.Equal(t, time.Duration(0), empty.Last30Days)
}

func TestRefreshAll_Deterministic(t *testing.T) {
	svc, st := setupRefresher(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	seedTerminatedSession(t, st, "user-1", "book-1", now.Add(-26*time.Hour), now.Add(-25*time.Hour))

	_, err := svc.RefreshAll(ctx, now)
	require.NoError(t, err)
	first, err := st.GetReadingStats(ctx, "user-1")
	require.NoError(t, err)

	// Re-running with the same reference time writes the same values.
	_, err = svc.RefreshAll(ctx, now)
	require.NoError(t, err)
	second, err := st.GetReadingStats(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.Last7Days, second.Last7Days)
	assert.Equal(t, first.Last30Days, second.Last30Days)
}

func TestRefreshWindow(t *testing.T) {
	svc, st := setupRefresher(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	now := time.Now().UTC()
	seedTerminatedSession(t, st, "user-1", "book-1", now.Add(-2*time.Hour), now.Add(-time.Hour))

	summary, err := svc.RefreshWindow(ctx, domain.StatsWindow7Days, now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Refreshed)

	stats, err := st.GetReadingStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, stats.Last7Days)
	// The other window column was not touched.
	assert.Equal(t, time.Duration(0), stats.Last30Days)
}

func TestRefreshAll_ClipsBoundarySessions(t *testing.T) {
	svc, st := setupRefresher(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	now := time.Now().UTC()
	winStart := domain.StatsWindow7Days.Start(now)
	// Straddles the 7-day boundary: only the inside half counts for 7d,
	// while the 30-day window sees the whole session.
	seedTerminatedSession(t, st, "user-1", "book-1", winStart.Add(-3*time.Hour), winStart.Add(3*time.Hour))

	_, err := svc.RefreshAll(ctx, now)
	require.NoError(t, err)

	stats, err := st.GetReadingStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour, stats.Last7Days)
	assert.Equal(t, 6*time.Hour, stats.Last30Days)
}
