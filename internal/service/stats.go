package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

// StatsService aggregates reading time: all-time per book and clipped
// rolling windows per user. All-time totals are computed live from the
// session table; the rolling windows are served from the cached snapshot
// that the refresher maintains.
type StatsService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(st *sqlite.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  st,
		logger: logger,
	}
}

// BookReadingTime is a book's accumulated reading duration.
type BookReadingTime struct {
	Book       *domain.Book  `json:"book"`
	Total      time.Duration `json:"total_time"`
	LastReadAt *time.Time    `json:"last_read_at,omitempty"`
	SessionCnt int           `json:"session_count"`
}

// UserStatistics is the per-user statistics view: cached rolling windows
// plus the books the user has spent time on.
type UserStatistics struct {
	Stats *domain.ReadingStats `json:"stats"`
	Books []BookReadingTime    `json:"books"`
}

// BookReadingTime returns the all-time reading duration for a book.
// A non-empty userID restricts the total to that user's sessions. A book
// nobody has finished a session on reports zero, not an error; only an
// unknown book is an error.
func (s *StatsService) BookReadingTime(ctx context.Context, bookID, userID string) (time.Duration, error) {
	ok, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return 0, fmt.Errorf("check book: %w", err)
	}
	if !ok {
		return 0, domainerrors.NotFoundf("book %s not found", bookID)
	}

	sessions, err := s.store.GetTerminatedSessionsForBook(ctx, bookID, userID)
	if err != nil {
		return 0, fmt.Errorf("get sessions: %w", err)
	}

	var total time.Duration
	for _, sess := range sessions {
		total += sess.Duration()
	}
	return total, nil
}

// ListBooksWithReadingTime returns every book with a positive accumulated
// reading time, most recently read first. Books with only active (or no)
// sessions are excluded. A non-empty userID restricts totals to that user.
func (s *StatsService) ListBooksWithReadingTime(ctx context.Context, userID string) ([]BookReadingTime, error) {
	bookIDs, err := s.store.BookIDsWithTerminatedSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books with sessions: %w", err)
	}

	result := make([]BookReadingTime, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		entry, err := s.bookEntry(ctx, bookID, userID)
		if err != nil {
			return nil, err
		}
		if entry == nil || entry.Total <= 0 {
			continue
		}
		result = append(result, *entry)
	}

	// Most recently read first.
	slices.SortFunc(result, func(a, b BookReadingTime) int {
		switch {
		case laterThan(a.LastReadAt, b.LastReadAt):
			return -1
		case laterThan(b.LastReadAt, a.LastReadAt):
			return 1
		default:
			return 0
		}
	})

	return result, nil
}

// WindowedReadingTime computes the user's reading time inside the rolling
// window ending at now, clipping sessions that straddle the boundary.
// This is the live computation; the refresher calls it to fill the snapshot.
func (s *StatsService) WindowedReadingTime(ctx context.Context, userID string, window domain.StatsWindow, now time.Time) (time.Duration, error) {
	if !window.Valid() {
		return 0, domainerrors.Validationf("unsupported stats window: %d days", window)
	}

	winStart := window.Start(now)
	sessions, err := s.store.GetTerminatedSessionsEndedSince(ctx, userID, winStart)
	if err != nil {
		return 0, fmt.Errorf("get sessions: %w", err)
	}

	var total time.Duration
	for _, sess := range sessions {
		total += domain.ClipToWindow(sess.StartedAt, sess.EndedAt, winStart, now)
	}
	return total, nil
}

// UserStatistics returns the cached rolling windows and the user's book
// totals. The window values come from the snapshot and may lag behind the
// session table by up to one refresh interval.
func (s *StatsService) UserStatistics(ctx context.Context, userID string) (*UserStatistics, error) {
	stats, err := s.store.GetReadingStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get stats snapshot: %w", err)
	}

	books, err := s.ListBooksWithReadingTime(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserStatistics{
		Stats: stats,
		Books: books,
	}, nil
}

func (s *StatsService) bookEntry(ctx context.Context, bookID, userID string) (*BookReadingTime, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", bookID, err)
	}

	sessions, err := s.store.GetTerminatedSessionsForBook(ctx, bookID, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions for book %s: %w", bookID, err)
	}

	entry := &BookReadingTime{Book: book}
	for _, sess := range sessions {
		entry.Total += sess.Duration()
		entry.SessionCnt++
		if entry.LastReadAt == nil || sess.EndedAt.After(*entry.LastReadAt) {
			entry.LastReadAt = sess.EndedAt
		}
	}
	return entry, nil
}

func laterThan(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
