package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testValidator() *validation.Validator {
	return validation.New()
}

func seedUser(t *testing.T, st *sqlite.Store, userID string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, st.CreateUser(context.Background(), &domain.User{
		ID:           userID,
		Username:     userID,
		Email:        userID + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func seedBook(t *testing.T, st *sqlite.Store, bookID, title string) {
	t.Helper()
	book := &domain.Book{
		ID:     bookID,
		Title:  title,
		Author: "Test Author",
		Year:   2021,
	}
	book.InitTimestamps()
	require.NoError(t, st.CreateBook(context.Background(), book))
}

// seedTerminatedSession creates a closed session with an exact interval.
func seedTerminatedSession(t *testing.T, st *sqlite.Store, userID, bookID string, start, end time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := st.StartSession(ctx, userID, bookID, start)
	require.NoError(t, err)
	n, err := st.EndSessions(ctx, userID, bookID, end)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
