package chi

import (
	"net/http"
	"time"

	"github.com/craftline/webhook-gateway/webhook"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

// WebhookHandlers sets up the webhook API routes
func WebhookHandlers(logger zerolog.Logger, svc webhook.UseCase, deliveries webhook.Reader, secret string, origins webhook.OriginPolicy, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	// outlives the per-handler dispatch deadline so that one fires first
	r.Use(middleware.Timeout(60 * time.Second))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Webhook API routes
	r.Route("/v1", func(r chi.Router) {
		// Vendor callback ingestion
		r.Post("/webhooks", postWebhook(svc, secret, origins, logger).ServeHTTP)

		// Operational introspection
		r.Get("/stats", getStats(svc, deliveries, logger).ServeHTTP)
	})

	return r
}
