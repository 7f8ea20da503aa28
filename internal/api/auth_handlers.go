package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// handleSignUp registers a new user account.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, user, s.logger)
}

// handleLogin verifies credentials and issues a token pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleRefresh rotates the refresh token and issues a new access token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Refresh(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// logoutRequest carries the refresh token to revoke.
type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleLogout revokes the device session for the given refresh token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
