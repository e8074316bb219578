package app

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	analytichttp "github.com/odyssey-erp/roomstats/internal/analytics/http"
	"github.com/odyssey-erp/roomstats/internal/auth"
	"github.com/odyssey-erp/roomstats/internal/observability"
	"github.com/odyssey-erp/roomstats/internal/platform/httpx"
	"github.com/odyssey-erp/roomstats/jobs"
	"github.com/odyssey-erp/roomstats/web"
)

// HealthCheck probes one dependency for /readyz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Tokens           *auth.Tokens
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
	Checks           []HealthCheck
}

// NewRouter constructs the chi.Router with roomstats defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Tokens:  params.Tokens,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readinessHandler(params.Logger, params.Checks))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/analytics", http.StatusSeeOther)
	})

	if params.AnalyticsHandler != nil {
		params.AnalyticsHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := web.Static()
	if err != nil {
		if params.Logger != nil {
			params.Logger.Error("create static sub filesystem", slog.Any("error", err))
		}
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// readinessHandler runs every check concurrently and reports 503 if any fails.
func readinessHandler(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		result := readiness{Status: "ok", Checks: make(map[string]string, len(checks))}
		var mu sync.Mutex
		var g errgroup.Group
		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			g.Go(func() error {
				status := "ok"
				if err := check.Check(ctx); err != nil {
					status = err.Error()
					if logger != nil {
						logger.Warn("readiness check failed", slog.String("check", check.Name), slog.Any("error", err))
					}
				}
				mu.Lock()
				result.Checks[check.Name] = status
				if status != "ok" {
					result.Status = "degraded"
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		code := http.StatusOK
		if result.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		httpx.JSON(w, code, result)
	}
}

var registerStaticTypes = sync.OnceFunc(func() {
	for ext, typ := range map[string]string{
		".css": "text/css; charset=utf-8",
		".svg": "image/svg+xml",
	} {
		if mime.TypeByExtension(ext) == "" {
			_ = mime.AddExtensionType(ext, typ)
		}
	}
})

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	registerStaticTypes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
