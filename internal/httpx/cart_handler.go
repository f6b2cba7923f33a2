package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biterush/campusgrub/internal/cart"
	"github.com/biterush/campusgrub/internal/catalog"
	"github.com/biterush/campusgrub/internal/checkout"
	"github.com/biterush/campusgrub/internal/location"
)

type CartHandler struct {
	Catalog  *catalog.Service
	Runtimes *Runtimes
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{id}", h.updateQuantity)
	r.Delete("/cart/items/{id}", h.removeItem)
	r.Delete("/cart", h.clearCart)
	r.Put("/cart/location", h.setLocation)
	r.Post("/cart/location/device", h.deviceLocation)
}

type cartView struct {
	Items            []cart.Line `json:"items"`
	TotalItems       int         `json:"total_items"`
	TotalPrice       string      `json:"total_price"`
	DeliveryLocation string      `json:"delivery_location,omitempty"`
	CheckoutState    string      `json:"checkout_state"`
	CheckoutError    string      `json:"checkout_error,omitempty"`
}

func (h *CartHandler) runtime(w http.ResponseWriter, r *http.Request) (*ShopperRuntime, bool) {
	sid, _ := sessionFrom(r.Context())
	p, _ := profileFrom(r.Context())
	rt, err := h.Runtimes.Get(r.Context(), sid, p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load cart")
		return nil, false
	}
	return rt, true
}

func view(rt *ShopperRuntime, checkoutErr string) cartView {
	return cartView{
		Items:            rt.Cart.Lines(),
		TotalItems:       rt.Cart.TotalItems(),
		TotalPrice:       rt.Cart.TotalPrice().StringFixed(2),
		DeliveryLocation: rt.Cart.Location(),
		CheckoutState:    rt.Seq.State().String(),
		CheckoutError:    checkoutErr,
	}
}

// evaluate fires the automatic editable->awaiting-qr transition after a
// qualifying mutation. A simulator failure is recoverable: it is reported in
// the response and the next qualifying change retries.
func evaluate(ctx context.Context, rt *ShopperRuntime) string {
	if err := rt.Seq.Evaluate(ctx); err != nil {
		log.Printf("checkout evaluate: %v", err)
		return checkout.ErrQRGeneration.Error()
	}
	return ""
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(rt, ""))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuItemID string `json:"menu_item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MenuItemID == "" {
		writeError(w, http.StatusBadRequest, "missing menu_item_id")
		return
	}
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if !rt.Seq.CanModifyCart() {
		writeError(w, http.StatusConflict, checkout.ErrCartLocked.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.Catalog.Repo.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load menu item")
		return
	}

	line := cart.Line{
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		StallID:   item.FoodCourtID,
		StallName: item.FoodCourtName,
		ImageRef:  item.ImageRef,
	}
	if err := rt.Cart.AddItem(ctx, line); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	rt.Seq.CartChanged()
	writeJSON(w, http.StatusOK, view(rt, evaluate(ctx, rt)))
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "id")
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if !rt.Seq.CanModifyCart() {
		writeError(w, http.StatusConflict, checkout.ErrCartLocked.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := rt.Cart.UpdateQuantity(ctx, id, req.Quantity); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	rt.Seq.CartChanged()
	writeJSON(w, http.StatusOK, view(rt, evaluate(ctx, rt)))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if !rt.Seq.CanModifyCart() {
		writeError(w, http.StatusConflict, checkout.ErrCartLocked.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := rt.Cart.RemoveItem(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	rt.Seq.CartChanged()
	writeJSON(w, http.StatusOK, view(rt, ""))
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if !rt.Seq.CanModifyCart() {
		writeError(w, http.StatusConflict, checkout.ErrCartLocked.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := rt.Cart.Clear(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	rt.Seq.CartChanged()
	writeJSON(w, http.StatusOK, view(rt, ""))
}

func (h *CartHandler) setLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if !rt.Seq.CanModifyCart() {
		writeError(w, http.StatusConflict, checkout.ErrCartLocked.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := rt.Setter.Set(ctx, req.Location); err != nil {
		if errors.Is(err, location.ErrEmptyLocation) {
			writeError(w, http.StatusBadRequest, "please enter a valid delivery location")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not save location")
		return
	}
	rt.Seq.CartChanged()
	writeJSON(w, http.StatusOK, view(rt, evaluate(ctx, rt)))
}

func (h *CartHandler) deviceLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if !rt.Seq.CanModifyCart() {
		writeError(w, http.StatusConflict, checkout.ErrCartLocked.Error())
		return
	}

	setter := rt.Setter
	if req.Lat != nil && req.Lon != nil {
		// device coordinates supplied by the client
		setter = &location.Setter{Cart: rt.Cart, Geo: location.Static(*req.Lat, *req.Lon)}
	}

	loc, err := setter.UseDevice(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, location.ErrPermissionDenied),
			errors.Is(err, location.ErrPositionUnavailable),
			errors.Is(err, location.ErrTimeout):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadGateway, location.ErrUnknown.Error())
		}
		return
	}
	rt.Seq.CartChanged()
	resp := view(rt, evaluate(r.Context(), rt))
	resp.DeliveryLocation = loc
	writeJSON(w, http.StatusOK, resp)
}
