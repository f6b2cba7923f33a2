package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/biterush/campusgrub/internal/catalog"
	kafkax "github.com/biterush/campusgrub/internal/kafka"
	"github.com/biterush/campusgrub/internal/orders"
)

// AdminHandler serves the vendor and admin dashboards: the live order feed
// and menu CRUD.
type AdminHandler struct {
	Orders   *orders.Repo
	Catalog  *catalog.Service
	Producer *kafkax.Producer // order.cancelled
	Service  string
}

func (h *AdminHandler) RegisterVendor(r chi.Router) {
	r.Get("/vendor/orders", h.vendorOrders)
	r.Put("/vendor/orders/{id}/status", h.updateStatus)
}

func (h *AdminHandler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/orders", h.adminOrders)
	r.Post("/admin/menu", h.upsertMenuItem)
	r.Delete("/admin/menu/{id}", h.deleteMenuItem)
}

func (h *AdminHandler) vendorOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// the vendor feed is everything still in motion
	var out []orders.Order
	for _, st := range []orders.Status{orders.StatusProcessing, orders.StatusOutForDelivery} {
		batch, err := h.Orders.ListByStatus(ctx, st)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not load orders")
			return
		}
		out = append(out, batch...)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) adminOrders(w http.ResponseWriter, r *http.Request) {
	status := orders.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = orders.StatusProcessing
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Orders.ListByStatus(ctx, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "missing status")
		return
	}
	to := orders.Status(req.Status)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Orders.UpdateStatus(ctx, id, to); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, orders.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "could not update order")
		}
		return
	}

	if to == orders.StatusCancelled && h.Producer != nil {
		o, err := h.Orders.GetOrder(ctx, id, "")
		userID := ""
		if err == nil {
			userID = o.UserID
		}
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventOrderCancelled,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: id,
			Payload: kafkax.MustMarshal(orders.OrderCancelledPayload{
				OrderID: id,
				UserID:  userID,
				Reason:  "vendor_request",
			}),
		}
		h.Producer.Publish(orders.PartitionKey(id), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCancelled)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type menuItemReq struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	FoodCourtID   string `json:"food_court_id"`
	FoodCourtName string `json:"food_court_name"`
	ImageRef      string `json:"image_ref"`
}

func (h *AdminHandler) upsertMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Category == "" || req.FoodCourtID == "" || req.FoodCourtName == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must be a non-negative decimal")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item := catalog.MenuItem{
		ID:            req.ID,
		Name:          req.Name,
		Price:         price,
		Description:   req.Description,
		Category:      req.Category,
		FoodCourtID:   req.FoodCourtID,
		FoodCourtName: req.FoodCourtName,
		ImageRef:      req.ImageRef,
	}
	if err := h.Catalog.Repo.UpsertMenuItem(ctx, item); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save menu item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *AdminHandler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.Repo.DeleteMenuItem(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not delete menu item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
