package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

func setupStats(t *testing.T) (*StatsService, *sqlite.Store) {
	t.Helper()
	st := setupTestStore(t)
	return NewStatsService(st, testLogger()), st
}

func TestBookReadingTime(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedUser(t, st, "user-2")
	seedBook(t, st, "book-1", "Dune")

	now := time.Now().UTC()
	seedTerminatedSession(t, st, "user-1", "book-1", now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	seedTerminatedSession(t, st, "user-1", "book-1", now.Add(-90*time.Minute), now.Add(-60*time.Minute))
	seedTerminatedSession(t, st, "user-2", "book-1", now.Add(-45*time.Minute), now.Add(-15*time.Minute))

	// All users.
	total, err := svc.BookReadingTime(ctx, "book-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, total)

	// One user.
	total, err = svc.BookReadingTime(ctx, "book-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, total)
}

func TestBookReadingTime_UnknownBook(t *testing.T) {
	svc, _ := setupStats(t)

	_, err := svc.BookReadingTime(context.Background(), "nope", "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestBookReadingTime_OnlyActiveSessions(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	_, err := st.StartSession(ctx, "user-1", "book-1", time.Now().UTC())
	require.NoError(t, err)

	// A book being read right now reports zero, not an error.
	total, err := svc.BookReadingTime(ctx, "book-1", "")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), total)
}

func TestListBooksWithReadingTime(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-done", "Finished Book")
	seedBook(t, st, "book-open", "Open Book")
	seedBook(t, st, "book-untouched", "Untouched Book")

	now := time.Now().UTC()
	seedTerminatedSession(t, st, "user-1", "book-done", now.Add(-2*time.Hour), now.Add(-time.Hour))
	_, err := st.StartSession(ctx, "user-1", "book-open", now)
	require.NoError(t, err)

	list, err := svc.ListBooksWithReadingTime(ctx, "user-1")
	require.NoError(t, err)

	// Only the book with terminated sessions appears.
	require.Len(t, list, 1)
	assert.Equal(t, "book-done", list[0].Book.ID)
	assert.Equal(t, time.Hour, list[0].Total)
	assert.Equal(t, 1, list[0].SessionCnt)
	require.NotNil(t, list[0].LastReadAt)
	assert.WithinDuration(t, now.Add(-time.Hour), *list[0].LastReadAt, time.Second)
}

func TestListBooksWithReadingTime_MostRecentFirst(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-old", "Old Book")
	seedBook(t, st, "book-new", "New Book")

	now := time.Now().UTC()
	seedTerminatedSession(t, st, "user-1", "book-old", now.Add(-48*time.Hour), now.Add(-47*time.Hour))
	seedTerminatedSession(t, st, "user-1", "book-new", now.Add(-2*time.Hour), now.Add(-time.Hour))

	list, err := svc.ListBooksWithReadingTime(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "book-new", list[0].Book.ID)
	assert.Equal(t, "book-old", list[1].Book.ID)
}

func TestWindowedReadingTime_Clipping(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	now := time.Now().UTC()
	winStart := domain.StatsWindow7Days.Start(now)

	// Session straddles the window boundary: 2 days inside, 2 days outside.
	seedTerminatedSession(t, st, "user-1", "book-1", winStart.Add(-48*time.Hour), winStart.Add(48*time.Hour))

	total, err := svc.WindowedReadingTime(ctx, "user-1", domain.StatsWindow7Days, now)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, total)
}

func TestWindowedReadingTime_SessionAges(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	// A 90-minute session ending at a fixed instant.
	sessionEnd := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedTerminatedSession(t, st, "user-1", "book-1", sessionEnd.Add(-90*time.Minute), sessionEnd)

	// One day later the session is fully inside both windows.
	dayLater := sessionEnd.AddDate(0, 0, 1)
	for _, window := range domain.StatsWindows {
		total, err := svc.WindowedReadingTime(ctx, "user-1", window, dayLater)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, total, "window %d at +1d", window)
	}

	// Forty days later it has aged out of both.
	muchLater := sessionEnd.AddDate(0, 0, 40)
	for _, window := range domain.StatsWindows {
		total, err := svc.WindowedReadingTime(ctx, "user-1", window, muchLater)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), total, "window %d at +40d", window)
	}
}

func TestWindowedReadingTime_InvalidWindow(t *testing.T) {
	svc, st := setupStats(t)

	seedUser(t, st, "user-1")

	_, err := svc.WindowedReadingTime(context.Background(), "user-1", domain.StatsWindow(14), time.Now())
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestUserStatistics_ServedFromSnapshot(t *testing.T) {
	svc, st := setupStats(t)
	ctx := context.Background()

	seedUser(t, st, "user-1")
	seedBook(t, st, "book-1", "Dune")

	now := time.Now().UTC()
	seedTerminatedSession(t, st, "user-1", "book-1", now.Add(-2*time.Hour), now.Add(-time.Hour))

	// The snapshot has not been refreshed, so windows still read zero even
	// though the session table has data.
	stats, err := svc.UserStatistics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), stats.Stats.Last7Days)
	assert.Equal(t, time.Duration(0), stats.Stats.Last30Days)

	// The book list is live.
	require.Len(t, stats.Books, 1)
	assert.Equal(t, time.Hour, stats.Books[0].Total)
}
