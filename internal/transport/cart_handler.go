package transport

import (
	"net/http"

	"abc-retailers/internal/cart"
	"abc-retailers/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/count", h.Count)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// Get revalidates the cart against live products before showing it, so the
// shopper sees corrections as warnings.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, warnings, err := h.carts.Validate(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err, "failed to load cart")
		return
	}
	summary := c.Summary()
	summary.Warnings = warnings
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.carts.Count(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err, "failed to count cart items")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.carts.AddToCart(r.Context(), sessionFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err, "failed to add item to cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

// UpdateItem sets a line quantity; zero or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		respondError(w, r, err, "failed to update cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveFromCart(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, r, err, "failed to remove item from cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), sessionFrom(r.Context())); err != nil {
		respondError(w, r, err, "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
