// Package api provides the HTTP API server and handlers for the PageTurn application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/ratelimit"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService    *service.AuthService
	bookService    *service.BookService
	readingService *service.ReadingService
	statsService   *service.StatsService
	loginLimiter   *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	bookService *service.BookService,
	readingService *service.ReadingService,
	statsService *service.StatsService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:    authService,
		bookService:    bookService,
		readingService: readingService,
		statsService:   statsService,
		loginLimiter:   ratelimit.New(1, 5),
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.recordMetrics)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check and metrics.
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", s.handleSignUp)
			r.With(s.limitLogin).Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		// Library: catalog and reading sessions.
		r.Route("/library", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/books", s.handleListBooks)
			r.Post("/books", s.handleCreateBook)
			r.Get("/books/{bookID}", s.handleGetBook)
			r.Post("/books/{bookID}/sessions/start", s.handleStartReading)
			r.Patch("/books/{bookID}/sessions/end", s.handleEndReading)
			r.Get("/sessions/active", s.handleActiveSession)
		})

		// Statistics.
		r.Route("/statistic", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/books", s.handleBooksReadingTime)
			r.Get("/books/{bookID}", s.handleBookReadingTime)
			r.Get("/users/me", s.handleMyStatistics)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
