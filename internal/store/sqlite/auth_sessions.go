package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

const authSessionColumns = `id, user_id, refresh_token_hash, expires_at,
	created_at, last_seen_at`

func scanAuthSession(scanner interface{ Scan(dest ...any) error }) (*domain.AuthSession, error) {
	var as domain.AuthSession

	var (
		expiresAt  string
		createdAt  string
		lastSeenAt string
	)

	err := scanner.Scan(
		&as.ID,
		&as.UserID,
		&as.RefreshTokenHash,
		&expiresAt,
		&createdAt,
		&lastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	as.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	as.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	as.LastSeenAt, err = parseTime(lastSeenAt)
	if err != nil {
		return nil, err
	}

	return &as, nil
}

// CreateAuthSession inserts a new device login session.
func (s *Store) CreateAuthSession(ctx context.Context, session *domain.AuthSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (
			id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
	)
	if err != nil {
		return fmt.Errorf("insert auth session: %w", err)
	}
	return nil
}

// GetAuthSessionByTokenHash looks up a login session by its refresh token hash.
// Returns store.ErrNotFound if no session holds that token.
func (s *Store) GetAuthSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authSessionColumns+` FROM auth_sessions WHERE refresh_token_hash = ?`,
		tokenHash)

	as, err := scanAuthSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return as, nil
}

// RotateAuthSession replaces the session's refresh token hash and extends
// its expiry. Used on refresh so a leaked old token stops working.
func (s *Store) RotateAuthSession(ctx context.Context, sessionID, newTokenHash string, expiresAt, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE auth_sessions
		SET refresh_token_hash = ?, expires_at = ?, last_seen_at = ?
		WHERE id = ?`,
		newTokenHash, formatTime(expiresAt), formatTime(now), sessionID)
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

// DeleteAuthSession removes a login session, revoking its refresh token.
func (s *Store) DeleteAuthSession(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE id = ?`, sessionID)
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

// DeleteExpiredAuthSessions removes every login session whose expiry has
// passed. Returns how many were removed.
func (s *Store) DeleteExpiredAuthSessions(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < ?`, formatTime(now))
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
