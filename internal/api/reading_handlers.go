package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/metrics"
)

// handleStartReading opens a reading session on a book. Any session the
// user still has open is closed at the same instant.
func (s *Server) handleStartReading(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	bookID := chi.URLParam(r, "bookID")

	session, err := s.readingService.StartReading(r.Context(), userID, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	metrics.SessionsStarted.Inc()
	response.Created(w, session, s.logger)
}

// handleEndReading closes the user's active session on a book.
func (s *Server) handleEndReading(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	bookID := chi.URLParam(r, "bookID")

	if err := s.readingService.EndReading(r.Context(), userID, bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	metrics.SessionsEnded.Inc()
	response.NoContent(w)
}

// handleActiveSession returns the user's open session, if any.
func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	session, err := s.readingService.ActiveSession(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if session == nil {
		response.Success(w, map[string]any{"active": false}, s.logger)
		return
	}

	response.Success(w, session, s.logger)
}
