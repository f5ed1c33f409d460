/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/api"
	"github.com/friendsincode/crewrota/internal/cache"
	"github.com/friendsincode/crewrota/internal/config"
	"github.com/friendsincode/crewrota/internal/export"
	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/telemetry"
	"github.com/friendsincode/crewrota/internal/version"
)

// Server bundles the API listener, the metrics listener and the planner.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	cache   *cache.Cache
	planner *planner.Service
	api     *api.API
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware(version.ServiceName + "-api"))
	router.Use(telemetry.MetricsMiddleware)
	// Solves carry their own deadline; the request timeout sits just above it.
	router.Use(middleware.Timeout(requestTimeout(cfg)))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.MetricsBind != "" {
		metricsRouter := chi.NewRouter()
		metricsRouter.Handle("/metrics", telemetry.Handler())
		srv.metricsServer = &http.Server{
			Addr:              cfg.MetricsBind,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 15 * time.Second,
		}
	}

	return srv, nil
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.SolverTimeout <= 0 {
		return 5 * time.Minute
	}
	return cfg.SolverTimeout + 15*time.Second
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self' 'unsafe-inline' data:; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	s.planner = planner.New(s.cfg.SolverConfig(), s.cfg.SolverTimeout, s.logger)

	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		if s.cfg.CacheTTL > 0 {
			cacheCfg.TTL = s.cfg.CacheTTL
		}
		resultCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = resultCache
			s.planner.SetCache(resultCache)
			s.DeferClose(func() error { return s.cache.Close() })
		}
	}

	s.api = api.New(s.planner, s.cfg.MaxReportDays, s.logger)
	s.api.SetRenderer(export.NewRenderer(s.cfg.BrowserBin, s.logger))
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := `{"status":"ok"`
		if s.cfg.CacheEnabled {
			if s.cache.IsAvailable() {
				response += `,"cache":"up"`
			} else {
				response += `,"cache":"down"`
			}
		}
		response += `}`
		_, _ = w.Write([]byte(response))
	})

	s.api.Routes(s.router)
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer exposes the metrics listener, nil when disabled.
func (s *Server) MetricsServer() *http.Server {
	return s.metricsServer
}

// ListenAndServe runs the API and metrics listeners until ctx is cancelled,
// then shuts both down within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 2)

	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if s.metricsServer != nil {
		go func() {
			s.logger.Info().Str("addr", s.metricsServer.Addr).Msg("metrics server listening")
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		s.logger.Error().Err(serveErr).Msg("listener failed")
	}

	s.logger.Info().Msg("shutting down gracefully...")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(timeoutCtx); err != nil {
		s.logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(timeoutCtx); err != nil {
			s.logger.Error().Err(err).Msg("metrics shutdown failed")
		}
	}
	return serveErr
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
