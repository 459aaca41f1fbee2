// Package server exposes the retrieval engine and indexing orchestrator over
// HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aidev-education/contentindex/internal/config"
	"github.com/aidev-education/contentindex/internal/index"
	"github.com/aidev-education/contentindex/internal/indexer"
	"github.com/aidev-education/contentindex/internal/search"
)

// Server wires the store, engine, and indexer behind the HTTP API.
type Server struct {
	cfg     *config.Config
	store   *index.Store
	engine  *search.Engine
	indexer *indexer.Indexer
	useAPI  bool // remote embedding credentials are configured

	router     chi.Router
	httpServer *http.Server
	progress   *progressHub

	indexMu sync.Mutex // serializes lazy first-query indexing
}

// New creates a Server with all dependencies. useAPI reports whether a remote
// embedding provider is configured; it decides the default for rebuilds.
func New(cfg *config.Config, store *index.Store, engine *search.Engine, ix *indexer.Indexer, useAPI bool) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		indexer:  ix,
		useAPI:   useAPI,
		progress: newProgressHub(),
	}

	ix.SetProgressFunc(s.progress.broadcast)
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.Environment == config.EnvDevelopment {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.registerRoutes(r)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("contentindex server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// ensureIndexed lazily triggers a full rebuild before serving the first
// search against an uninitialized index. Concurrent first queries wait for a
// single rebuild instead of each starting their own.
func (s *Server) ensureIndexed(ctx context.Context) error {
	if s.store.Ready() {
		return nil
	}
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.store.Ready() {
		return nil
	}
	log.Printf("server: index not ready, triggering initial rebuild")
	_, err := s.indexer.IndexAll(ctx, indexer.Options{UseAPI: s.useAPI})
	return err
}
