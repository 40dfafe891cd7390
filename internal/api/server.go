// Package api provides the HTTP API server and handlers for the Marginalia application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/marginalia-app/marginalia-server/internal/service"
	"github.com/marginalia-app/marginalia-server/internal/validation"
	"github.com/marginalia-app/marginalia-server/internal/view"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	library   *service.Library
	views     *view.Builder
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(library *service.Library, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		library:   library,
		views:     view.NewBuilder(),
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig("Marginalia API", "1.0.0")
	RegisterErrorHandler()
	s.api = humachi.New(s.router, humaConfig)

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerInsightRoutes()
	s.registerFilterRoutes()
	s.registerDebugRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
