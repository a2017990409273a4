package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/pkg/catalog"
)

// Catalog is the query surface served over HTTP.
type Catalog interface {
	ListAll(ctx context.Context) ([]*catalog.YearDocument, error)
	ListFlattenedSorted(ctx context.Context) ([]catalog.Course, error)
	ListByTags(ctx context.Context, tags []string) ([]catalog.TaggedCourse, error)
}

// Pinger verifies store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the catalog routes and /healthz.
// The server runs in a background goroutine and can be gracefully shut down.
type Server struct {
	server   *http.Server
	listener net.Listener
	catalog  Catalog
	store    Pinger
	schema   catalog.Schema
	routes   config.RoutesConfig
	timeout  time.Duration
}

// New creates a catalog HTTP server from a validated configuration.
// The server listens on all interfaces at cfg.Server.Port.
func New(cfg *config.Config, svc Catalog, store Pinger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.RequestTimeout() + 5*time.Second,
		},
		catalog: svc,
		store:   store,
		schema:  cfg.CatalogSchema(),
		routes:  *cfg.Routes,
		timeout: cfg.RequestTimeout(),
	}

	mux.HandleFunc("GET "+s.routes.All.Path, s.handleAll)
	mux.HandleFunc("GET "+s.routes.Sorted.Path, s.handleSorted)
	mux.HandleFunc("GET "+s.routes.Tagged.Path, s.handleTagged)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s
}

// Handler returns the routing handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listen address and serves in a background goroutine.
// Returns an error if the address cannot be bound (e.g., port already in use).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		log.Printf("[INFO] listening to port: %s", s.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] Catalog server error: %v", err)
		}
		log.Printf("[DEBUG] Catalog server stopped")
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the HTTP server, waiting for in-flight
// requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	log.Printf("[DEBUG] Shutting down catalog server...")
	return s.server.Shutdown(ctx)
}
