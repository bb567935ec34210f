// Package api assembles the REST server over the ledger.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cardboxhq/cardbox/internal/api/websocket"
	"github.com/cardboxhq/cardbox/internal/cardlookup"
	"github.com/cardboxhq/cardbox/internal/importer"
	"github.com/cardboxhq/cardbox/internal/inventory"
	"github.com/cardboxhq/cardbox/internal/storage"
	"github.com/cardboxhq/cardbox/internal/storage/repository"
)

// Config holds configuration for the API server.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	allowedOrigins []string

	wsHub *websocket.Hub

	db       *storage.DB
	engine   *inventory.Engine
	resolver *cardlookup.Service
	importer *importer.Importer

	inv   repository.InventoryRepository
	decks repository.DeckRepository
	users repository.UserRepository
}

// NewServer creates the API server and wires its routes.
func NewServer(cfg *Config, db *storage.DB, resolver *cardlookup.Service) *Server {
	conn := db.Conn()
	engine := inventory.NewEngine(db)

	s := &Server{
		router:         chi.NewRouter(),
		allowedOrigins: cfg.AllowedOrigins,
		wsHub:          websocket.NewHub(),
		db:             db,
		engine:         engine,
		resolver:       resolver,
		importer:       importer.New(resolver, engine),
		inv:            repository.NewInventoryRepository(conn),
		decks:          repository.NewDeckRepository(conn),
		users:          repository.NewUserRepository(conn),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router exposes the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the WebSocket hub and serves HTTP until Shutdown.
func (s *Server) Start() error {
	go s.wsHub.Run()

	log.Printf("api: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// healthCheck reports liveness and database reachability.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
