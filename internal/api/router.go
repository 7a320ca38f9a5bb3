// Package api wires the session service behind a chi router.
package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ktrewin/percept/internal/api/handlers"
	mw "github.com/ktrewin/percept/internal/api/middleware"
	"github.com/ktrewin/percept/internal/buildconfig"
	"github.com/ktrewin/percept/internal/config"
	"github.com/ktrewin/percept/internal/service"
)

// App holds the router and the session registry.
type App struct {
	Router   *chi.Mux
	Sessions *service.SessionService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(logger *zap.Logger) *App {
	sessionSvc := service.NewSessionService(config.MaxSessions(), logger)
	sessionHandler := handlers.NewSessionHandler(sessionSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Sessions:  sessionSvc,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetByID)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/observe", sessionHandler.Observe)
				r.Post("/act", sessionHandler.Act)
				r.Post("/step", sessionHandler.Step)
				r.Get("/belief", sessionHandler.Belief)
				r.Put("/belief", sessionHandler.ResetBelief)
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(logger *zap.Logger) *chi.Mux {
	return NewApp(logger).Router
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"sessions": app.Sessions.Count(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"sessions":       app.Sessions.Count(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
