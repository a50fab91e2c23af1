// Package api provides the HTTP API server and handlers for the Ebookd catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Amir-Wake/Ebookd/internal/auth"
	"github.com/Amir-Wake/Ebookd/internal/config"
	"github.com/Amir-Wake/Ebookd/internal/service"
	"github.com/Amir-Wake/Ebookd/internal/store"
	"github.com/Amir-Wake/Ebookd/internal/validation"
)

const apiVersion = "1.0.0"

// Services groups the business logic services used by the API server.
type Services struct {
	Book   *service.BookService
	Review *service.ReviewService
	User   *service.UserService
	Search *service.SearchService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *store.Store
	services  *Services
	tokens    *auth.TokenService
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, tokens *auth.TokenService, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	name := cfg.Server.Name
	if name == "" {
		name = "Ebookd API"
	}

	humaConfig := huma.DefaultConfig(name, apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:     st,
		services:  services,
		tokens:    tokens,
		validator: validation.New(),
		router:    router,
		api:       api,
		logger:    logger,
	}

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerUserRoutes()
	s.registerFileRoutes()
	s.registerSearchRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
