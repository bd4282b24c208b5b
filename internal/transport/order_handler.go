package transport

import (
	"net/http"

	"abc-retailers/internal/middleware"
	"abc-retailers/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.List)
		r.Get("/{id}", h.Detail)
		r.Post("/{id}/cancel", h.Cancel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.CreateManual)
			r.Put("/{id}", h.Edit)
			r.Post("/{id}/status", h.UpdateStatus)
		})
	})
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, order.ErrOrderNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, _ := viewerFrom(r.Context())
	orders, err := h.orders.List(r.Context(), viewer)
	if err != nil {
		respondError(w, r, err, "failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	viewer, _ := viewerFrom(r.Context())

	o, err := h.orders.Detail(r.Context(), id, viewer)
	if err != nil {
		respondError(w, r, err, "failed to load order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	viewer, _ := viewerFrom(r.Context())

	o, err := h.orders.Cancel(r.Context(), id, viewer)
	if err != nil {
		respondError(w, r, err, "failed to cancel order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) CreateManual(w http.ResponseWriter, r *http.Request) {
	var in order.ManualOrderInput
	if !decode(w, r, &in) {
		return
	}

	o, err := h.orders.CreateManualOrder(r.Context(), in)
	if err != nil {
		respondError(w, r, err, "failed to create order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	var in order.EditInput
	if !decode(w, r, &in) {
		return
	}

	o, err := h.orders.Edit(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err, "failed to update order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, r, err, "failed to update order status")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, o)
}
