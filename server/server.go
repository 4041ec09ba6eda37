// Package server provides HTTP server management and lifecycle handling for the
// medicine reminder: router, middleware chain and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giygas/medreminder/config"
	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/metrics"
)

const rateLimiterCleanup = 30 * time.Minute

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	limiter *RateLimiter
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		limiter: NewRateLimiter(rateLimiterCleanup),
		config:  cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(LocalNetworkOnlyMiddleware) // Before RealIPMiddleware to see the socket peer
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(slog.Default()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	// Page
	s.router.Get("/", h.ServePage)
	s.router.Post("/medicines", h.CreateMedicine)
	s.router.Post("/medicines/{id}/delete", h.RequestDelete)
	s.router.Post("/medicines/{id}/doses/{index}/toggle", h.ToggleDose)
	s.router.Route("/delete", func(r chi.Router) {
		r.Post("/confirm", h.ConfirmDelete)
		r.Post("/cancel", h.CancelDelete)
		r.Post("/dismiss", h.DismissDelete)
	})

	// JSON API
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/medicines", h.ListMedicinesAPI)
		r.Post("/medicines", h.CreateMedicineAPI)
		r.Post("/medicines/{id}/doses/{index}/toggle", h.ToggleDoseAPI)
		r.Get("/notifications", h.ListNotifications)
		r.Delete("/notifications/{id}", h.DismissNotification)
	})

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: http://%s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
