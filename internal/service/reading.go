// Package service contains the application services bridging the HTTP API
// and the store layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

// ReadingService manages the reading-session lifecycle: starting a session
// on a book and ending it, while keeping the single-active invariant.
type ReadingService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewReadingService creates a new reading service.
func NewReadingService(st *sqlite.Store, logger *slog.Logger) *ReadingService {
	return &ReadingService{
		store:  st,
		logger: logger,
	}
}

// StartReading opens a reading session for the user on a book.
// Any session the user still has open, on any book, is closed at the same
// instant the new one starts. Returns the new session.
func (s *ReadingService) StartReading(ctx context.Context, userID, bookID string) (*domain.ReadingSession, error) {
	if err := s.requireBook(ctx, bookID); err != nil {
		return nil, err
	}

	session, err := s.store.StartSession(ctx, userID, bookID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.logger.Info("reading session started",
		"session_id", session.ID,
		"user_id", userID,
		"book_id", bookID)

	return session, nil
}

// EndReading closes the user's active session on the given book.
//
// Returns ErrNoActiveSession when the user has nothing open on that book;
// that path writes nothing, so a request naming the wrong book cannot touch
// a session running on another one. After a successful close, any stray
// active session left on another book is closed at the same instant.
func (s *ReadingService) EndReading(ctx context.Context, userID, bookID string) error {
	if err := s.requireBook(ctx, bookID); err != nil {
		return err
	}

	now := time.Now().UTC()
	closed, err := s.store.EndSessions(ctx, userID, bookID, now)
	if err != nil {
		return fmt.Errorf("end sessions: %w", err)
	}
	if closed == 0 {
		return domainerrors.NoActiveSession("no active reading session for this book")
	}

	stray, err := s.store.EndSessions(ctx, userID, "", now)
	if err != nil {
		return fmt.Errorf("end stray sessions: %w", err)
	}
	if stray > 0 {
		s.logger.Warn("closed stray reading sessions on other books",
			"user_id", userID,
			"ended_book_id", bookID,
			"closed", stray)
	}

	s.logger.Info("reading session ended",
		"user_id", userID,
		"book_id", bookID,
		"closed", closed)

	return nil
}

// ActiveSession returns the user's currently open session, or nil if the
// user is not reading anything.
func (s *ReadingService) ActiveSession(ctx context.Context, userID string) (*domain.ReadingSession, error) {
	session, err := s.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

func (s *ReadingService) requireBook(ctx context.Context, bookID string) error {
	ok, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if !ok {
		return domainerrors.NotFoundf("book %s not found", bookID)
	}
	return nil
}
