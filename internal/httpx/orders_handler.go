package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biterush/campusgrub/internal/orders"
)

type OrdersHandler struct {
	Repo *orders.Repo
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listMine)
	r.Get("/orders/{id}", h.getMine)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	p, _ := profileFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Repo.ListByUser(ctx, p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getMine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	p, _ := profileFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.GetOrder(ctx, id, p.ID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
