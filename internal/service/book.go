package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// BookService manages the book catalog.
type BookService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st *sqlite.Store, v *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// CreateBookRequest contains the data for a new catalog entry.
type CreateBookRequest struct {
	Title            string `json:"title" validate:"required,max=512"`
	Author           string `json:"author" validate:"required,max=256"`
	Year             int    `json:"year" validate:"required,gte=0"`
	ShortDescription string `json:"short_description" validate:"max=1024"`
	FullDescription  string `json:"full_description"`
}

// BookDetail is a catalog entry together with when it was last read.
type BookDetail struct {
	*domain.Book
	LastReadAt *time.Time `json:"last_read_date,omitempty"`
}

// CreateBook adds a book to the catalog.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		ID:               bookID,
		Title:            req.Title,
		Author:           req.Author,
		Year:             req.Year,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created", "book_id", bookID, "title", req.Title)
	return book, nil
}

// GetBook returns a catalog entry with its last read date (the end time of
// the most recently terminated session, across all users).
func (s *BookService) GetBook(ctx context.Context, bookID string) (*BookDetail, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	lastRead, err := s.store.GetLastEndedAtForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get last read: %w", err)
	}

	return &BookDetail{
		Book:       book,
		LastReadAt: lastRead,
	}, nil
}

// ListBooks returns the whole catalog ordered by title.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}
