package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apim-labs/punchlist/internal/config"
	"github.com/apim-labs/punchlist/internal/store"
)

// Server wires the store into an HTTP API.
type Server struct {
	store  *store.Store
	router *gin.Engine
	http   *http.Server
}

// New builds a Server listening on cfg's address. Nothing is bound until
// Run is called.
func New(st *store.Store, cfg config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(), cors())

	s := &Server{
		store:  st,
		router: router,
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("http server stopped")
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.GET("/health", s.handleHealth)

	api.GET("/checklists", s.handleListChecklists)
	api.GET("/checklists/:name/slugs", s.handleChecklistSlugs)
	api.GET("/checklists/:name/export", s.handleExport)
	api.POST("/checklists/:name/import", s.handleImport)

	api.GET("/slugs/:id", s.handleGetSlug)
	api.PATCH("/slugs/:id", s.handlePatchSlug)
	api.GET("/slugs/:id/relationships", s.handleRelationships)
	api.POST("/slugs/updates", s.handleBulkUpdates)
}
