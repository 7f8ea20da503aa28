package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// readingSessionColumns is the ordered list of columns selected in reading session queries.
// Must match the scan order in scanReadingSession.
const readingSessionColumns = `id, user_id, book_id, started_at, ended_at,
	is_active, created_at, updated_at`

// scanReadingSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.ReadingSession.
func scanReadingSession(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingSession, error) {
	var rs domain.ReadingSession

	var (
		startedAt string
		endedAt   sql.NullString
		isActive  int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&rs.ID,
		&rs.UserID,
		&rs.BookID,
		&startedAt,
		&endedAt,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	rs.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	rs.EndedAt, err = parseNullableTime(endedAt)
	if err != nil {
		return nil, err
	}
	rs.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rs.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	rs.IsActive = isActive != 0

	return &rs, nil
}

// StartSession closes every active session for the user (any book) and opens
// a new one for the given book, as a single transaction.
//
// The close-then-open ordering inside one transaction is what upholds the
// single-active invariant: no reader can ever observe the old and the new
// session active at the same time, and an interrupted call leaves no trace.
func (s *Store) StartSession(ctx context.Context, userID, bookID string, now time.Time) (*domain.ReadingSession, error) {
	sessionID, err := id.Generate("rs")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE reading_sessions
		SET ended_at = ?, is_active = 0, updated_at = ?
		WHERE user_id = ? AND is_active = 1`,
		formatTime(now), formatTime(now), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("close active sessions: %w", err)
	}

	session := domain.NewReadingSession(sessionID, userID, bookID, now)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reading_sessions (
			id, user_id, book_id, started_at, ended_at, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, NULL, 1, ?, ?)`,
		session.ID,
		session.UserID,
		session.BookID,
		formatTime(session.StartedAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return session, nil
}

// EndSessions closes active sessions for a user. A non-empty bookID restricts
// the close to sessions on that book; an empty bookID closes all of them.
// Returns the number of sessions closed; zero means nothing was written.
func (s *Store) EndSessions(ctx context.Context, userID, bookID string, now time.Time) (int, error) {
	query := `
		UPDATE reading_sessions
		SET ended_at = ?, is_active = 0, updated_at = ?
		WHERE user_id = ? AND is_active = 1`
	args := []any{formatTime(now), formatTime(now), userID}

	if bookID != "" {
		query += ` AND book_id = ?`
		args = append(args, bookID)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("end sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetReadingSession retrieves a single reading session by ID.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) GetReadingSession(ctx context.Context, sessionID string) (*domain.ReadingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+readingSessionColumns+` FROM reading_sessions WHERE id = ?`, sessionID)

	rs, err := scanReadingSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// GetActiveSession returns the user's active reading session, on any book.
// Returns nil, nil if the user is not currently reading.
func (s *Store) GetActiveSession(ctx context.Context, userID string) (*domain.ReadingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+readingSessionColumns+` FROM reading_sessions
		WHERE user_id = ? AND is_active = 1
		ORDER BY started_at DESC
		LIMIT 1`,
		userID,
	)

	rs, err := scanReadingSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// CountActiveSessions returns how many sessions are currently active for a
// user. With the invariant intact this is always 0 or 1.
func (s *Store) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reading_sessions WHERE user_id = ? AND is_active = 1`,
		userID,
	).Scan(&n)
	return n, err
}

// GetTerminatedSessionsForBook returns all terminated sessions for a book,
// optionally restricted to one user (empty userID means all users).
// Active sessions are excluded; they have no duration yet.
func (s *Store) GetTerminatedSessionsForBook(ctx context.Context, bookID, userID string) ([]*domain.ReadingSession, error) {
	query := `SELECT ` + readingSessionColumns + ` FROM reading_sessions
		WHERE book_id = ? AND ended_at IS NOT NULL`
	args := []any{bookID}

	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY started_at DESC`

	return s.queryReadingSessions(ctx, query, args...)
}

// GetTerminatedSessionsEndedSince returns the user's terminated sessions
// whose end time falls at or after the cutoff. Sessions that ended before
// the cutoff cannot overlap the window and are filtered out in SQL.
func (s *Store) GetTerminatedSessionsEndedSince(ctx context.Context, userID string, cutoff time.Time) ([]*domain.ReadingSession, error) {
	return s.queryReadingSessions(ctx,
		`SELECT `+readingSessionColumns+` FROM reading_sessions
		WHERE user_id = ? AND ended_at IS NOT NULL AND ended_at >= ?
		ORDER BY started_at DESC`,
		userID, formatTime(cutoff),
	)
}

// GetUserBookSessions returns all sessions for a user and book,
// ordered by started_at descending (most recent first).
func (s *Store) GetUserBookSessions(ctx context.Context, userID, bookID string) ([]*domain.ReadingSession, error) {
	return s.queryReadingSessions(ctx,
		`SELECT `+readingSessionColumns+` FROM reading_sessions
		WHERE user_id = ? AND book_id = ?
		ORDER BY started_at DESC`,
		userID, bookID,
	)
}

// GetLastEndedAtForBook returns the end time of the most recently ended
// session for a book, across all users. Returns nil if the book has never
// had a terminated session.
func (s *Store) GetLastEndedAtForBook(ctx context.Context, bookID string) (*time.Time, error) {
	var endedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT ended_at FROM reading_sessions
		WHERE book_id = ? AND ended_at IS NOT NULL
		ORDER BY ended_at DESC
		LIMIT 1`,
		bookID,
	).Scan(&endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseNullableTime(endedAt)
}

// BookIDsWithTerminatedSessions returns the distinct books that have at
// least one terminated session, optionally restricted to one user.
// Used by the aggregator to narrow the candidate set before clipping.
func (s *Store) BookIDsWithTerminatedSessions(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT DISTINCT book_id FROM reading_sessions WHERE ended_at IS NOT NULL`
	var args []any
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var bookID string
		if err := rows.Scan(&bookID); err != nil {
			return nil, err
		}
		ids = append(ids, bookID)
	}
	return ids, rows.Err()
}

// queryReadingSessions runs a session query and scans all rows.
func (s *Store) queryReadingSessions(ctx context.Context, query string, args ...any) ([]*domain.ReadingSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ReadingSession
	for rows.Next() {
		rs, err := scanReadingSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
