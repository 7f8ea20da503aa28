package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// handleListBooks returns the whole catalog.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListBooks(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleCreateBook adds a book to the catalog.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.CreateBook(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Book created",
		"book_id", book.ID,
		"title", book.Title,
		"created_by", getUsername(r.Context()))

	response.Created(w, book, s.logger)
}

// handleGetBook returns a catalog entry with its last read date.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")

	detail, err := s.bookService.GetBook(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, detail, s.logger)
}
