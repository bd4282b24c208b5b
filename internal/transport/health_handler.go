package transport

import (
	"context"
	"net/http"
	"time"

	"abc-retailers/internal/metrics"
	"abc-retailers/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	metrics *metrics.Registry
}

func NewHealthHandler(db Pinger, m *metrics.Registry) *HealthHandler {
	return &HealthHandler{db: db, metrics: m}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/metrics", h.Metrics)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			middleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unavailable",
				"database": err.Error(),
			})
			return
		}
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.metrics.Snapshot())
}
