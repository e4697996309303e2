package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes of the decision core.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://www.cardrank.example", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public surface
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/robots.txt", h.Robots)

	// Outbound affiliate redirect and conversion ingestion
	r.Get("/r/{issuer}", h.OutboundClick)
	r.Post("/webhooks/conversion", h.ConversionWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Get("/variant", h.Variant)
		r.Get("/links/allowed", h.LinkAllowed)
		r.Get("/clicks/summary", h.ClicksSummary)

		// Scheduled evaluation jobs: bearer-gated, rejected before any work.
		r.Route("/cron", func(r chi.Router) {
			r.Use(requireCronSecret(h.cronSecret))
			r.Post("/tier-evaluation", h.TierEvaluation)
			r.Post("/page-health", h.PageHealthEvaluation)
		})
	})

	return r
}

// requireCronSecret rejects scheduled-job calls whose bearer token does not
// match the shared secret. An unset secret disables the endpoints rather
// than leaving them open.
func requireCronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				unauthorized(w)
				return
			}
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
