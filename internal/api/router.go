package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sevasetu/assistant/internal/api/handlers"
	mw "github.com/sevasetu/assistant/internal/api/middleware"
	"github.com/sevasetu/assistant/internal/client"
	"github.com/sevasetu/assistant/internal/config"
	"github.com/sevasetu/assistant/internal/domain"
	"github.com/sevasetu/assistant/internal/service"
	"github.com/sevasetu/assistant/internal/store"
	"go.uber.org/zap"
)

// App holds the router plus request metrics for the metrics endpoint.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(sessions *store.SessionStore, remote domain.ServiceClient, logger *zap.Logger) *App {
	workflowSvc := service.NewWorkflowService(sessions, remote, config.SchemeTopK(), logger)

	sessionHandler := handlers.NewSessionHandler(workflowSvc)
	workflowHandler := handlers.NewWorkflowHandler(workflowSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(mw.Metrics(&app.requestCount, &app.errorCount))               // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health
	r.Get("/health", healthHandler(remote))

	// Metrics
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Get("/status", sessionHandler.GetStatus)
			r.Delete("/", sessionHandler.Delete)

			r.Post("/input", workflowHandler.SubmitInput)
			r.Post("/scheme", workflowHandler.SelectScheme)
			r.Put("/profile", workflowHandler.UpdateProfile)
			r.Post("/eligibility", workflowHandler.SubmitEligibility)
			r.Post("/grievance", workflowHandler.GenerateGrievance)
			r.Post("/schemes/back", workflowHandler.ViewOtherSchemes)
			r.Post("/documents", workflowHandler.ProcessDocument)
			r.Post("/finalize", workflowHandler.ValidateAndGenerate)
			r.Post("/restart", workflowHandler.Restart)
			r.Delete("/error", workflowHandler.DismissError)
		})
	})

	return app
}

// healthHandler reports liveness plus whether the scheme service answers.
func healthHandler(remote domain.ServiceClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := remote.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "scheme_service": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "scheme_service": "reachable"})
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
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure clients and stores satisfy their interfaces at compile time.
var (
	_ domain.SessionStore  = (*store.SessionStore)(nil)
	_ domain.ServiceClient = (*client.HTTPClient)(nil)
	_ domain.ServiceClient = (*client.MockClient)(nil)
)
