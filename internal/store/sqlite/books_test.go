package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &domain.Book{
		ID:               "book-1",
		Title:            "The Master and Margarita",
		Author:           "Mikhail Bulgakov",
		Year:             1967,
		ShortDescription: "The devil visits Moscow.",
		FullDescription:  "A satirical novel interleaving 1930s Moscow with Pilate's Jerusalem.",
	}
	book.InitTimestamps()

	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != book.Title {
		t.Errorf("Title: got %q, want %q", got.Title, book.Title)
	}
	if got.Author != book.Author {
		t.Errorf("Author: got %q, want %q", got.Author, book.Author)
	}
	if got.Year != 1967 {
		t.Errorf("Year: got %d", got.Year)
	}
	if got.FullDescription != book.FullDescription {
		t.Errorf("FullDescription: got %q", got.FullDescription)
	}
}

func TestCreateBookDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "book-dup", "Original")

	book := &domain.Book{ID: "book-dup", Title: "Copy", Author: "A", Year: 2000}
	book.InitTimestamps()

	err := s.CreateBook(ctx, book)
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrAlreadyExists.Code {
		t.Errorf("expected already-exists error, got %v", err)
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBookExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "book-exists", "Present")

	ok, err := s.BookExists(ctx, "book-exists")
	if err != nil {
		t.Fatalf("BookExists: %v", err)
	}
	if !ok {
		t.Error("expected book to exist")
	}

	ok, err = s.BookExists(ctx, "book-missing")
	if err != nil {
		t.Fatalf("BookExists (missing): %v", err)
	}
	if ok {
		t.Error("expected book to not exist")
	}
}

func TestListBooksOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestBook(t, s, "book-z", "Zen")
	insertTestBook(t, s, "book-a", "Anathem")

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].Title != "Anathem" || books[1].Title != "Zen" {
		t.Errorf("expected title order [Anathem Zen], got [%s %s]", books[0].Title, books[1].Title)
	}
}
