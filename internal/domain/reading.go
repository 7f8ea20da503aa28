package domain

import "time"

// ReadingSession is one continuous reading interval for a (user, book) pair.
// A session is active while EndedAt is nil. The store guarantees a user has
// at most one active session at any instant, across all books: starting a new
// session closes any other active session for that user first.
type ReadingSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	BookID    string     `json:"book_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// IsActive is redundant with EndedAt == nil but kept as an explicit
	// column so the single-active lookup stays a cheap indexed query.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReadingSession creates an active session starting at the given instant.
func NewReadingSession(id, userID, bookID string, startedAt time.Time) *ReadingSession {
	return &ReadingSession{
		ID:        id,
		UserID:    userID,
		BookID:    bookID,
		StartedAt: startedAt,
		IsActive:  true,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}
}

// End closes the session at the given instant.
// Ending an already-closed session is a no-op.
func (rs *ReadingSession) End(at time.Time) {
	if !rs.IsActive {
		return
	}
	rs.EndedAt = &at
	rs.IsActive = false
	rs.UpdatedAt = at
}

// Duration returns the total length of a terminated session.
// Active sessions have no duration yet and report zero.
func (rs *ReadingSession) Duration() time.Duration {
	if rs.EndedAt == nil {
		return 0
	}
	return rs.EndedAt.Sub(rs.StartedAt)
}

// ClipToWindow returns how much of a session falls inside [winStart, winEnd].
//
// Only terminated sessions contribute: a nil end means the session is still
// running and counts as zero until it closes. Boundaries are inclusive, and
// the arithmetic is integer nanoseconds throughout, so a session that exactly
// spans the window is counted exactly once with no drift.
func ClipToWindow(start time.Time, end *time.Time, winStart, winEnd time.Time) time.Duration {
	if end == nil {
		return 0
	}

	effectiveStart := start
	if winStart.After(effectiveStart) {
		effectiveStart = winStart
	}

	effectiveEnd := *end
	if winEnd.Before(effectiveEnd) {
		effectiveEnd = winEnd
	}

	if !effectiveEnd.After(effectiveStart) {
		return 0
	}
	return effectiveEnd.Sub(effectiveStart)
}
