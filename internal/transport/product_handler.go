package transport

import (
	"net/http"
	"path/filepath"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/product"
	"abc-retailers/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

type ProductHandler struct {
	products product.Service
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/image", h.UploadImage)
		})
	})
}

// List returns active products, optionally filtered by ?category=. Admins
// may pass ?all=true to include soft-deleted ones.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []*product.Product
		err   error
	)
	if r.URL.Query().Get("all") == "true" && utils.IsAdmin(r.Context()) {
		items, err = h.products.ListAll(r.Context())
	} else {
		items, err = h.products.ListActive(r.Context(), utils.NilIfEmpty(r.URL.Query().Get("category")))
	}
	if err != nil {
		respondError(w, r, err, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, "failed to load product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in product.Input
	if !decode(w, r, &in) {
		return
	}

	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, err, "failed to create product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in product.Input
	if !decode(w, r, &in) {
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err, "failed to update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" field and attaches the stored
// image URL to the product.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	id := chi.URLParam(r, "id")
	p, err := h.products.AttachImage(r.Context(), id, filepath.Base(header.Filename), file)
	if err != nil {
		respondError(w, r, err, "failed to upload image")
		return
	}

	logger.FromCtx(r.Context()).Info("product image attached",
		zap.String("product_id", id),
		zap.String("image_url", utils.PtrString(p.ImageURL)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, p)
}
