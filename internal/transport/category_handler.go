package transport

import (
	"net/http"

	"abc-retailers/internal/category"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/utils"

	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	categories category.Service
}

func NewCategoryHandler(categories category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.List)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.List(r.Context(), utils.NilIfEmpty(r.URL.Query().Get("q")))
	if err != nil {
		respondError(w, r, err, "failed to list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}
