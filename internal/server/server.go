package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"reelhouse/internal/auth"
	"reelhouse/internal/core"
	"reelhouse/internal/features/catalog"
	"reelhouse/internal/server/handlers"
	"reelhouse/internal/store"
	"reelhouse/internal/views"
)

// Server wires the store, identity, features and router together
type Server struct {
	config      *core.Config
	logger      *core.Logger
	repo        store.Repository
	db          *core.Database
	authService *auth.Service
	identity    *auth.Middleware
	registry    *core.Registry
	router      chi.Router
	server      *http.Server
}

// New builds a server from config. Features are registered but not
// initialized until Init or Start.
func New(ctx context.Context, config *core.Config, logger *core.Logger) (*Server, error) {
	repo, db, err := openStore(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(repo, auth.NewPassword(bcrypt.DefaultCost), logger.ForFeature("auth"))
	identity := auth.NewMiddleware(authService, logger.ForFeature("auth"))
	registry := core.NewRegistry(logger)

	srv := &Server{
		config:      config,
		logger:      logger,
		repo:        repo,
		db:          db,
		authService: authService,
		identity:    identity,
		registry:    registry,
	}

	if err := srv.registerFeatures(); err != nil {
		repo.Close()
		return nil, err
	}

	srv.setupRoutes()
	return srv, nil
}

func (s *Server) registerFeatures() error {
	if !s.config.IsFeatureEnabled("catalog") {
		s.logger.Info("Catalog feature disabled")
		return nil
	}

	catalogConfig := catalog.NewConfig(s.config)

	var seeder *catalog.Seeder
	if s.config.Features.Catalog.SeedDemoData {
		seeder = catalog.NewSeeder(s.repo, s.authService,
			s.config.Auth.AdminUsername, s.config.Auth.AdminPassword, s.logger.ForFeature("catalog"))
	}

	feature := catalog.NewFeature(s.logger, s.repo, s.identity, seeder, catalogConfig)
	if err := s.registry.Register(feature); err != nil {
		return fmt.Errorf("failed to register catalog feature: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes() {
	authHandler := auth.NewHandler(s.authService, s.logger.ForFeature("auth"))

	var pinger handlers.Pinger
	if s.db != nil {
		pinger = s.db
	}
	systemHandler := handlers.NewSystemHandler(s.logger, s.registry, pinger, s.config.Database.Driver)

	mux := chi.NewRouter()

	// Add middleware
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(s.logger))
	mux.Use(metricsMiddleware)
	mux.Use(corsMiddleware(s.config.HTTP))
	mux.Use(rateLimitMiddleware(s.config.HTTP))
	mux.Use(s.identity.Identify)

	// System routes
	mux.Get("/health", systemHandler.HealthCheckHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/assets/*", handlers.StaticHandler(views.Assets))

	// Identity
	mux.Post("/api/auth/login", authHandler.LoginHandler)
	mux.Post("/api/auth/register", authHandler.RegisterHandler)
	mux.With(s.identity.RequireUser).Get("/api/auth/me", authHandler.MeHandler)

	// Feature routes
	s.registry.Mount(mux)

	s.router = mux
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: mux,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Init initializes all enabled features
func (s *Server) Init(ctx context.Context) error {
	if err := s.registry.InitAll(ctx); err != nil {
		s.logger.Error("Failed to initialize features", "error", err)
		return err
	}
	return nil
}

// Start initializes the features and serves HTTP until Shutdown
func (s *Server) Start(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}

	s.logger.Info("Starting server", "host", s.config.Server.Host, "port", s.config.Server.Port,
		"store", s.config.Database.Driver)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, then the features, then closes the store
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
	}

	if err := s.registry.ShutdownAll(ctx); err != nil {
		s.logger.Error("Failed to shutdown features", "error", err)
		errs = append(errs, err)
	}

	if s.db != nil {
		s.db.LogStats()
	}
	if err := s.repo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	return errors.Join(errs...)
}
