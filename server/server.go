// Package server hosts the HTTP surface of the quota service: the
// guarded API routes plus health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
	"github.com/recallio/quotakit/quota"
)

// Server wraps the http.Server lifecycle around the assembled router
type Server struct {
	config Config
	srv    *http.Server
	logger *logger.CtxZapLogger
}

// NewServer builds the router and the server around it
func NewServer(cfg Config, engine *quota.Engine, profiles quota.Profiles, log *logger.CtxZapLogger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetLogger("server")
	}

	router := NewRouter(cfg, engine, profiles)

	return &Server{
		config: cfg,
		logger: log,
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Run serves until the listener fails or Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("✅ HTTP server listening", zap.String("addr", s.config.Addr))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	return s.srv.Shutdown(ctx)
}
