// Package server assembles the HTTP application: router, middleware,
// site routes and static delivery, and runs it with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formsite/internal/logging"
	"github.com/goliatone/go-formsite/internal/metrics"
	"github.com/goliatone/go-formsite/internal/settings"
	"github.com/goliatone/go-formsite/internal/site"
)

// Deps lists what Application needs.
type Deps struct {
	Settings settings.Settings
	Logger   *slog.Logger
	Site     *site.Site
	Metrics  *metrics.Metrics
	// Health checks readiness of backing services; nil means always healthy.
	Health func(ctx context.Context) error
}

// Application builds the request handler: the chi router with the site and
// operational routes, wrapped by static and media delivery.
func Application(deps Deps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(allowedHosts(deps.Settings))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	if deps.Site != nil {
		deps.Site.Routes(r)
	}

	handler, err := Static(r, StaticConfig{
		StaticURL:  deps.Settings.StaticURL,
		StaticRoot: deps.Settings.StaticRoot,
		MediaURL:   deps.Settings.MediaURL,
		MediaRoot:  deps.Settings.MediaRoot,
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func allowedHosts(cfg settings.Settings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.HostAllowed(r.Host) {
				http.Error(w, "Bad Request (invalid host)", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down, giving in-flight
// requests up to grace to finish.
func Run(ctx context.Context, srv *http.Server, grace time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down", "grace", grace)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("server: graceful shutdown did not complete in %v: %w", grace, err)
		}
		logger.Info("server stopped")
		return nil
	}
}
