// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config and builds the generator, then Server.New() creates:
//   sqlite.DB → ListService / UserService → ListHandler / UserHandler
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/masterlist/internal/auth"
	"github.com/sakif/masterlist/internal/generator"
	"github.com/sakif/masterlist/internal/handler"
	"github.com/sakif/masterlist/internal/middleware"
	sqliteRepo "github.com/sakif/masterlist/internal/repository/sqlite"
	"github.com/sakif/masterlist/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file (":memory:" in tests)
	JWTSecret string // HMAC key for signing access tokens
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns a database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the file lock.
// This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // database connection (owned by server, closed on shutdown)
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Create the database connection (sqlite.New)
//  2. Create the auth utilities (token + password services)
//  3. Create the service layer with the DB and the generator
//  4. Create the handlers with the services
//  5. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get the repository interfaces (not the concrete sqlite.DB)
// - Handlers get the services (not the repositories or DB)
//
// The generator is passed in rather than built here: main.go decides
// whether there's an API key to build a real client from, and a nil
// generator simply means every enrichment falls back.
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package. Import aliases are common in Go when
// package names would otherwise collide or be unclear.
func New(cfg Config, gen generator.Generator, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(gen); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the fully wired router. Tests drive requests through it
// with httptest instead of binding a real port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Useful for tests and for callers that never Start().
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /users             → Register (public)
// POST   /login             → Login, returns bearer token (public)
// GET    /users/{username}  → Own profile          [auth]
// PATCH  /users/{username}  → Change own password  [auth]
// DELETE /users/{username}  → Delete own account   [auth]
// POST   /list              → Create list          [auth]
// GET    /list              → All own lists        [auth]
// GET    /list/{id}         → Single list          [auth]
// PATCH  /list/{id}         → Replace list         [auth]
// DELETE /list/{id}         → Delete list          [auth]
// GET    /story/{id}?mood=  → Story from list      [auth]
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Logger — logs each request with timing info
// 4. Recoverer — catches panics and returns 500 instead of crashing
// The token check only wraps the protected group — register and login
// must stay reachable without one.
func (s *Server) setupRoutes(gen generator.Generator) error {
	// === Global Middleware ===
	// These run on EVERY request, in order

	// Chi's built-in middleware
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	// === Auth utilities ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// === Services & Handlers ===
	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) → implements repository.ListRepository and
	//   repository.UserRepository; the services receive the interfaces,
	//   the handlers receive the services.
	//
	// Notice: the handlers never touch the database directly.
	// The services never touch HTTP. Clean separation!
	listService := service.NewListService(s.db, gen, s.logger)
	userService := service.NewUserService(s.db, tokens, passwords, s.logger)

	listHandler := handler.NewListHandler(listService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	// === Public routes ===
	s.router.Post("/users", userHandler.HandleRegister)
	s.router.Post("/login", userHandler.HandleLogin)

	// === Protected routes ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users/{username}", userHandler.HandleGet)
		r.Patch("/users/{username}", userHandler.HandleUpdate)
		r.Delete("/users/{username}", userHandler.HandleDelete)

		r.Post("/list", listHandler.HandleCreate)
		r.Get("/list", listHandler.HandleGetAll)
		r.Get("/list/{id}", listHandler.HandleGet)
		r.Patch("/list/{id}", listHandler.HandleUpdate)
		r.Delete("/list/{id}", listHandler.HandleDelete)

		r.Get("/story/{id}", listHandler.HandleStory)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	// Ensure the database is closed when the server stops.
	// This runs AFTER everything else in this function finishes.
	defer s.db.Close()

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must outlast the generator's 30s call timeout — the
	// create and story routes block on it before answering.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
