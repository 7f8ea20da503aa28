package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// Durations live in the database as integer milliseconds, matching the wire
// representation, and are widened back to time.Duration on the way out.

// GetReadingStats returns the cached rolling aggregates for a user.
// Returns store.ErrNotFound if the user has no stats row, which means the
// user itself does not exist: CreateUser always inserts one.
func (s *Store) GetReadingStats(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	var (
		stats     domain.ReadingStats
		win7ms    int64
		win30ms   int64
		updatedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, window_7d_ms, window_30d_ms, updated_at
		FROM reading_stats WHERE user_id = ?`,
		userID,
	).Scan(&stats.UserID, &win7ms, &win30ms, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	stats.Last7Days = time.Duration(win7ms) * time.Millisecond
	stats.Last30Days = time.Duration(win30ms) * time.Millisecond
	stats.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// UpdateStatsWindow writes a recomputed duration for one window size.
// Returns store.ErrNotFound if the user has no stats row.
func (s *Store) UpdateStatsWindow(ctx context.Context, userID string, window domain.StatsWindow, d time.Duration, now time.Time) error {
	if !window.Valid() {
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("unsupported stats window: %d days", window))
	}

	column := "window_7d_ms"
	if window == domain.StatsWindow30Days {
		column = "window_30d_ms"
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE reading_stats SET `+column+` = ?, updated_at = ? WHERE user_id = ?`,
		d.Milliseconds(), formatTime(now), userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateStats writes both windows at once, as the refresher computes them
// together from a single session scan.
func (s *Store) UpdateStats(ctx context.Context, stats *domain.ReadingStats) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reading_stats
		SET window_7d_ms = ?, window_30d_ms = ?, updated_at = ?
		WHERE user_id = ?`,
		stats.Last7Days.Milliseconds(),
		stats.Last30Days.Milliseconds(),
		formatTime(stats.UpdatedAt),
		stats.UserID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
