package transport

import (
	"net/http"

	"abc-retailers/internal/home"
	"abc-retailers/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type HomeHandler struct {
	home home.Service
}

func NewHomeHandler(svc home.Service) *HomeHandler {
	return &HomeHandler{home: svc}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Feed)
}

// Feed serves the storefront landing data: newest products and shop totals.
func (h *HomeHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.home.Feed(r.Context())
	if err != nil {
		respondError(w, r, err, "failed to load home page")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, feed)
}
