package domain

import (
	"testing"
	"time"
)

var clipBase = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return clipBase.AddDate(0, 0, n)
}

func ptr(t time.Time) *time.Time { return &t }

func TestClipToWindow(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      *time.Time
		winStart time.Time
		winEnd   time.Time
		want     time.Duration
	}{
		{
			name:     "session fully inside window",
			start:    day(4),
			end:      ptr(day(5)),
			winStart: day(3),
			winEnd:   day(10),
			want:     24 * time.Hour,
		},
		{
			name:     "session starts before window",
			start:    day(0),
			end:      ptr(day(5)),
			winStart: day(3),
			winEnd:   day(10),
			want:     2 * 24 * time.Hour,
		},
		{
			name:     "session ends after window",
			start:    day(8),
			end:      ptr(day(12)),
			winStart: day(3),
			winEnd:   day(10),
			want:     2 * 24 * time.Hour,
		},
		{
			name:     "session spans whole window",
			start:    day(0),
			end:      ptr(day(12)),
			winStart: day(3),
			winEnd:   day(10),
			want:     7 * 24 * time.Hour,
		},
		{
			name:     "session entirely before window",
			start:    day(0),
			end:      ptr(day(2)),
			winStart: day(3),
			winEnd:   day(10),
			want:     0,
		},
		{
			name:     "session entirely after window",
			start:    day(11),
			end:      ptr(day(12)),
			winStart: day(3),
			winEnd:   day(10),
			want:     0,
		},
		{
			name:     "session end touches window start",
			start:    day(1),
			end:      ptr(day(3)),
			winStart: day(3),
			winEnd:   day(10),
			want:     0,
		},
		{
			name:     "window exactly matches session",
			start:    day(3),
			end:      ptr(day(10)),
			winStart: day(3),
			winEnd:   day(10),
			want:     7 * 24 * time.Hour,
		},
		{
			name:     "active session contributes nothing",
			start:    day(4),
			end:      nil,
			winStart: day(3),
			winEnd:   day(10),
			want:     0,
		},
		{
			name:     "sub-hour overlap stays exact",
			start:    day(3).Add(-30 * time.Minute),
			end:      ptr(day(3).Add(90 * time.Minute)),
			winStart: day(3),
			winEnd:   day(10),
			want:     90 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipToWindow(tt.start, tt.end, tt.winStart, tt.winEnd)
			if got != tt.want {
				t.Errorf("ClipToWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadingSessionEnd(t *testing.T) {
	start := day(0)
	rs := NewReadingSession("rs-1", "usr-1", "book-1", start)

	if !rs.IsActive {
		t.Fatal("new session should be active")
	}
	if rs.EndedAt != nil {
		t.Fatal("new session should have nil EndedAt")
	}
	if rs.Duration() != 0 {
		t.Errorf("active session duration should be zero, got %v", rs.Duration())
	}

	endAt := start.Add(90 * time.Minute)
	rs.End(endAt)

	if rs.IsActive {
		t.Error("ended session should not be active")
	}
	if rs.EndedAt == nil || !rs.EndedAt.Equal(endAt) {
		t.Errorf("EndedAt = %v, want %v", rs.EndedAt, endAt)
	}
	if rs.Duration() != 90*time.Minute {
		t.Errorf("Duration() = %v, want 90m", rs.Duration())
	}
}

func TestReadingSessionEndIdempotent(t *testing.T) {
	start := day(0)
	rs := NewReadingSession("rs-1", "usr-1", "book-1", start)

	first := start.Add(time.Hour)
	rs.End(first)
	// A later End must not move the close time.
	rs.End(start.Add(5 * time.Hour))

	if !rs.EndedAt.Equal(first) {
		t.Errorf("EndedAt = %v, want %v", rs.EndedAt, first)
	}
}

func TestStatsWindow(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	if got := StatsWindow7Days.Start(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("7-day window start = %v", got)
	}
	if got := StatsWindow30Days.Start(now); !got.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("30-day window start = %v", got)
	}

	if !StatsWindow7Days.Valid() || !StatsWindow30Days.Valid() {
		t.Error("7 and 30 day windows should be valid")
	}
	if StatsWindow(14).Valid() {
		t.Error("14-day window should not be valid")
	}
}

func TestReadingStatsWindowAccessors(t *testing.T) {
	s := &ReadingStats{UserID: "usr-1"}

	s.SetWindow(StatsWindow7Days, 2*time.Hour)
	s.SetWindow(StatsWindow30Days, 9*time.Hour)

	if s.Window(StatsWindow7Days) != 2*time.Hour {
		t.Errorf("7-day window = %v", s.Window(StatsWindow7Days))
	}
	if s.Window(StatsWindow30Days) != 9*time.Hour {
		t.Errorf("30-day window = %v", s.Window(StatsWindow30Days))
	}
}
