package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

// RefresherService recomputes the per-user rolling-window snapshots from the
// session table. It runs on a ticker (see the workers provider) but can also
// be invoked directly, e.g. from tests or an admin endpoint.
type RefresherService struct {
	store  *sqlite.Store
	stats  *StatsService
	logger *slog.Logger
}

// NewRefresherService creates a new refresher service.
func NewRefresherService(st *sqlite.Store, stats *StatsService, logger *slog.Logger) *RefresherService {
	return &RefresherService{
		store:  st,
		stats:  stats,
		logger: logger,
	}
}

// RefreshSummary reports the outcome of one refresh pass.
type RefreshSummary struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// RefreshAll recomputes both rolling windows for every user and writes the
// snapshots. A failure for one user is logged and counted but never stops
// the pass; the summary says how many users succeeded and how many did not.
// For a fixed now and unchanged session data the result is deterministic.
func (s *RefresherService) RefreshAll(ctx context.Context, now time.Time) (RefreshSummary, error) {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list users: %w", err)
	}

	var summary RefreshSummary
	for _, userID := range userIDs {
		if err := s.refreshUser(ctx, userID, now); err != nil {
			summary.Failed++
			s.logger.Error("stats refresh failed for user",
				"user_id", userID,
				"error", err)
			continue
		}
		summary.Refreshed++
	}

	s.logger.Info("stats refresh pass complete",
		"refreshed", summary.Refreshed,
		"failed", summary.Failed)

	return summary, nil
}

// RefreshWindow recomputes a single window for every user. Used when only
// one snapshot column needs rebuilding.
func (s *RefresherService) RefreshWindow(ctx context.Context, window domain.StatsWindow, now time.Time) (RefreshSummary, error) {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list users: %w", err)
	}

	var summary RefreshSummary
	for _, userID := range userIDs {
		total, err := s.stats.WindowedReadingTime(ctx, userID, window, now)
		if err == nil {
			err = s.store.UpdateStatsWindow(ctx, userID, window, total, now)
		}
		if err != nil {
			summary.Failed++
			s.logger.Error("window refresh failed for user",
				"user_id", userID,
				"window_days", int(window),
				"error", err)
			continue
		}
		summary.Refreshed++
	}

	return summary, nil
}

func (s *RefresherService) refreshUser(ctx context.Context, userID string, now time.Time) error {
	stats := &domain.ReadingStats{
		UserID:    userID,
		UpdatedAt: now,
	}

	for _, window := range domain.StatsWindows {
		total, err := s.stats.WindowedReadingTime(ctx, userID, window, now)
		if err != nil {
			return fmt.Errorf("compute %d-day window: %w", int(window), err)
		}
		stats.SetWindow(window, total)
	}

	if err := s.store.UpdateStats(ctx, stats); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
