package domain

import "time"

// StatsWindow is a rolling window size, in days, for reading statistics.
type StatsWindow int

// Supported rolling windows.
const (
	StatsWindow7Days  StatsWindow = 7
	StatsWindow30Days StatsWindow = 30
)

// StatsWindows lists every window the refresher maintains.
var StatsWindows = []StatsWindow{StatsWindow7Days, StatsWindow30Days}

// Valid returns true if the window is one the system maintains snapshots for.
func (w StatsWindow) Valid() bool {
	return w == StatsWindow7Days || w == StatsWindow30Days
}

// Start returns the inclusive window start for the given reference instant.
func (w StatsWindow) Start(now time.Time) time.Time {
	return now.AddDate(0, 0, -int(w))
}

// ReadingStats is the cached per-user rolling aggregate.
// It is derived data: the reading_sessions table is the source of truth and
// the refresher recomputes these periodically, so values may lag.
type ReadingStats struct {
	UserID     string        `json:"user_id"`
	Last7Days  time.Duration `json:"statistic_time_7_days"`
	Last30Days time.Duration `json:"statistic_time_30_days"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Window returns the cached duration for a window size.
func (s *ReadingStats) Window(w StatsWindow) time.Duration {
	if w == StatsWindow7Days {
		return s.Last7Days
	}
	return s.Last30Days
}

// SetWindow stores a recomputed duration for a window size.
func (s *ReadingStats) SetWindow(w StatsWindow, d time.Duration) {
	if w == StatsWindow7Days {
		s.Last7Days = d
		return
	}
	s.Last30Days = d
}
