package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pageturnapp/pageturn-server/internal/http/response"
)

// bookTimeResponse is the per-book reading time payload.
type bookTimeResponse struct {
	BookID    string `json:"book_id"`
	TotalTime int64  `json:"total_time_ms"`
}

// handleBooksReadingTime lists books with accumulated reading time across
// all users, most recently read first. Books with no terminated sessions
// are excluded. Per-user numbers live under /statistic/users/me.
func (s *Server) handleBooksReadingTime(w http.ResponseWriter, r *http.Request) {
	list, err := s.statsService.ListBooksWithReadingTime(r.Context(), "")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// handleBookReadingTime returns a book's all-time reading duration summed
// over every user. A book nobody finished a session on reports zero.
func (s *Server) handleBookReadingTime(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")

	total, err := s.statsService.BookReadingTime(r.Context(), bookID, "")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, bookTimeResponse{
		BookID:    bookID,
		TotalTime: total.Milliseconds(),
	}, s.logger)
}

// handleMyStatistics returns the caller's cached rolling windows and book
// totals.
func (s *Server) handleMyStatistics(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	stats, err := s.statsService.UserStatistics(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}
