package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LucasGeos/GKG/internal/metrics"
	"github.com/LucasGeos/GKG/internal/selectservice"
	"github.com/LucasGeos/GKG/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, receives selection events and is mounted at GET /events
// inside the auth group. reg may be nil.
func NewRouter(svc *selectservice.Service, authEnabled bool, token string, broker *sse.Broker, reg *metrics.Registry) chi.Router {
	h := NewHandler(svc, broker)
	jh := NewJobHandler(svc)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Use(AuthMiddleware(authEnabled, token))

	// Selections.
	r.Post("/selections", h.CreateSelection)
	r.Get("/selections", h.ListSelections)
	r.Get("/selections/{key}", h.GetSelection)
	r.Get("/selections/{key}/geojson", h.SelectionGeoJSON)
	r.Delete("/selections/{key}", h.DeleteSelection)

	// Journey context and schemes.
	r.Post("/context", h.BuildContext)
	r.Get("/schemes", h.Schemes)

	// Inbox upload.
	r.Post("/jobs", jh.Upload)

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}

// HealthRoutes mounts the unauthenticated liveness and readiness probes.
func HealthRoutes(r chi.Router, ready func() error) {
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
