package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medba/medba/internal/api/handler"
	mw "github.com/medba/medba/internal/api/middleware"
	"github.com/medba/medba/internal/ratelimit"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	formatsHandler *handler.FormatsHandler,
	downloadHandler *handler.DownloadHandler,
	healthHandler *handler.HealthHandler,
	limiter ratelimit.Limiter,
	clientOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.SecureHeaders)
	r.Use(mw.CORS(clientOrigin))

	// Health endpoints sit outside the rate limit so probes never starve.
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.RateLimit(limiter))

		r.Post("/formats", formatsHandler.List)

		r.Route("/download", func(r chi.Router) {
			r.Get("/video", downloadHandler.Video)
			r.Get("/mp3", downloadHandler.Audio)
			r.Get("/thumbnail", downloadHandler.Thumbnail)
		})
	})

	// Unknown routes get the same JSON error shape as everything else.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"This page is not available."}`))
	})

	return r
}
