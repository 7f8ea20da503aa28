package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pageturnapp/pageturn-server/internal/auth"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// AuthService handles registration, login, token refresh and logout.
type AuthService struct {
	store        *sqlite.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *sqlite.Store, tokenService *auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		validator:    v,
		logger:       logger,
	}
}

// RegisterRequest contains sign-up data.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=32"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // Access token lifetime in seconds
}

// Register creates a new user account. The user's statistics snapshot row
// is created in the same transaction as the user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		var storeErr *store.Error
		if domainerrors.As(err, &storeErr) && storeErr.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.AlreadyExists("username or email already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "username", req.Username)

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown username and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	now := time.Now().UTC()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	resp, err := s.issueTokens(ctx, user, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return resp, nil
}

// Refresh rotates a refresh token and issues a new access token.
// The old refresh token stops working immediately.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.store.GetAuthSessionByTokenHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("get auth session: %w", err)
	}

	if session.IsExpired() {
		// Expired sessions are removed on sight.
		if err := s.store.DeleteAuthSession(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired auth session", "session_id", session.ID, "error", err)
		}
		return nil, domainerrors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	newRefreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenService.RefreshTokenDuration())
	if err := s.store.RotateAuthSession(ctx, session.ID, auth.HashRefreshToken(newRefreshToken), expiresAt, now); err != nil {
		return nil, fmt.Errorf("rotate auth session: %w", err)
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.tokenService.AccessTokenDuration().Seconds()),
	}, nil
}

// Logout revokes the device session holding the given refresh token.
// Logging out with an unknown token succeeds silently.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.store.GetAuthSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get auth session: %w", err)
	}

	if err := s.store.DeleteAuthSession(ctx, session.ID); err != nil {
		return fmt.Errorf("delete auth session: %w", err)
	}

	s.logger.Info("user logged out", "user_id", session.UserID)
	return nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *AuthService) VerifyAccessToken(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}
	return claims, nil
}

// CleanupExpiredSessions removes expired device sessions.
// Called periodically by the workers provider.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredAuthSessions(ctx, time.Now().UTC())
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, now time.Time) (*AuthResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	session := &domain.AuthSession{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.store.CreateAuthSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create auth session: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenService.AccessTokenDuration().Seconds()),
	}, nil
}
