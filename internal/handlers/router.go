// Package handlers exposes hydrated pages over HTTP.
package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lordwhitefire/new-portfolio/internal/observability"
	"github.com/lordwhitefire/new-portfolio/internal/pages"
	"github.com/lordwhitefire/new-portfolio/internal/site"
)

const defaultRequestTimeout = 30 * time.Second

// PageRenderer hydrates manifest pages.
type PageRenderer interface {
	Manifest() site.Manifest
	RenderPage(ctx context.Context, page site.Page, params pages.Params) (pages.Pass, error)
}

// Config wires the router.
type Config struct {
	Renderer PageRenderer
	Logger   *zap.Logger
	// PublicDir holds the assets/ directory served under /assets/. Empty disables it.
	PublicDir string
	// RequestTimeout bounds each request, including its CMS round trips.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler for the site.
func NewRouter(cfg Config) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.InjectLoggerMiddleware(cfg.Logger))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PublicDir != "" {
		assets := http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(cfg.PublicDir, "assets"))))
		r.Handle("/assets/*", assets)
	}

	h := &pageHandlers{renderer: cfg.Renderer}
	h.Routes(r)
	return r
}
