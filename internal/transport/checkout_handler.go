package transport

import (
	"net/http"

	"abc-retailers/internal/cart"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/order"

	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	carts  cart.Service
	orders order.Service
}

func NewCheckoutHandler(carts cart.Service, orders order.Service) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, orders: orders}
}

func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.Review)
		r.Post("/", h.Submit)
	})
}

// Review shows the revalidated cart the shopper is about to submit.
func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	c, warnings, err := h.carts.Validate(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err, "failed to load cart")
		return
	}
	if c.IsEmpty() && len(warnings) == 0 {
		respondError(w, r, order.ErrEmptyCart, "")
		return
	}
	summary := c.Summary()
	summary.Warnings = warnings
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var details order.CustomerDetails
	if !decode(w, r, &details) {
		return
	}

	viewer, _ := viewerFrom(r.Context())
	o, err := h.orders.Checkout(r.Context(), sessionFrom(r.Context()), viewer.UserID, details)
	if err != nil {
		respondError(w, r, err, "failed to place order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, o)
}
