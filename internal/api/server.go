// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recipe-engine/internal/common/config"
	"recipe-engine/internal/common/logger"
)

// Server is the HTTP front of the query façade.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func NewServer(cfg config.ServerConfig, handlers *Handlers, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /recipes/search", handlers.Search)
	mux.HandleFunc("PUT /recipes/{id}/index", handlers.IndexRecipe)
	mux.HandleFunc("DELETE /recipes/{id}/index", handlers.RemoveRecipe)
	mux.HandleFunc("GET /healthz", handlers.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = withMetrics(handler)
	handler = withAccessLog(log, handler)
	handler = withRequestID(handler)
	handler = withRecovery(log, handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
		},
		logger: log,
	}
}

// Handler exposes the composed handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
