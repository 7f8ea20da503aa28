package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/metrics"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// StatsRefreshJob periodically recomputes the rolling-window snapshots.
type StatsRefreshJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *StatsRefreshJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideStatsRefreshJob provides the periodic stats refresh job.
func ProvideStatsRefreshJob(i do.Injector) (*StatsRefreshJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	refresher := do.MustInvoke[*service.RefresherService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	runPass := func() {
		start := time.Now()
		summary, err := refresher.RefreshAll(ctx, start.UTC())
		if err != nil {
			log.Warn("Stats refresh pass failed", "error", err)
			return
		}
		metrics.StatsRefreshRuns.Inc()
		metrics.StatsRefreshUsers.WithLabelValues("refreshed").Add(float64(summary.Refreshed))
		metrics.StatsRefreshUsers.WithLabelValues("failed").Add(float64(summary.Failed))
		metrics.StatsRefreshDuration.Observe(time.Since(start).Seconds())
	}

	go func() {
		ticker := time.NewTicker(cfg.Stats.RefreshInterval)
		defer ticker.Stop()

		// Initial pass on startup so snapshots are never older than one restart.
		runPass()

		for {
			select {
			case <-ticker.C:
				runPass()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Stats refresh job started", "interval", cfg.Stats.RefreshInterval)

	return &StatsRefreshJob{cancel: cancel}, nil
}

// SessionCleanupJob runs periodic auth session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic auth session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := authService.CleanupExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := authService.CleanupExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
