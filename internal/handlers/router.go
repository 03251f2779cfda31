package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteOptions tunes the router middleware
type RouteOptions struct {
	RateLimitPerMinute int
	AllowedOrigins     []string
}

// Routes mounts every endpoint on a chi router
func (h *Handler) Routes(opts RouteOptions) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
		}

		r.Get("/", h.HandleForm)
		r.Post("/", h.HandleForm)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/translate", h.HandleTranslate)
			r.Post("/caption", h.HandleCaption)
			r.Post("/narrate", h.HandleNarrate)
			r.Get("/languages", h.HandleLanguages)
			r.Post("/languages/refresh", h.HandleRefreshLanguages)
			r.Post("/contents", h.HandleUpload)
			r.Get("/contents/{contentID}", h.HandleContent)
			r.Post("/process", h.HandleProcessAsync)
			r.Get("/runs/{runID}", h.HandleStatus)
		})
	})

	return r
}

// handleHealth returns health status
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
