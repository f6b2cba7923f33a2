package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/biterush/campusgrub/internal/checkout"
	kafkax "github.com/biterush/campusgrub/internal/kafka"
	"github.com/biterush/campusgrub/internal/orders"
	"github.com/biterush/campusgrub/internal/payment"
	"github.com/biterush/campusgrub/internal/redisx"
)

const qrImageSize = 200

type CheckoutHandler struct {
	Runtimes *Runtimes
	Redis    *redis.Client
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Get("/checkout", h.status)
	r.Post("/checkout/pay", h.confirmPayment)
	r.Post("/checkout/cancel", h.cancel)
	r.Post("/checkout/ack", h.acknowledge)
}

type checkoutView struct {
	State            string `json:"state"`
	QRRef            string `json:"qr_ref,omitempty"`
	QRImageURL       string `json:"qr_image_url,omitempty"`
	SecondsRemaining int    `json:"seconds_remaining"`
	TotalPrice       string `json:"total_price"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

func (h *CheckoutHandler) view(rt *ShopperRuntime) checkoutView {
	v := checkoutView{
		State:            rt.Seq.State().String(),
		QRRef:            rt.Seq.QRRef(),
		SecondsRemaining: rt.Seq.SecondsRemaining(),
		TotalPrice:       rt.Cart.TotalPrice().StringFixed(2),
		EstimatedMinutes: orders.EstimateDeliveryMinutes(rt.Cart.TotalItems()),
	}
	if v.QRRef != "" {
		v.QRImageURL = payment.QRImageURL(v.QRRef, qrImageSize)
	}
	return v
}

func (h *CheckoutHandler) runtime(w http.ResponseWriter, r *http.Request) (*ShopperRuntime, bool) {
	sid, _ := sessionFrom(r.Context())
	p, _ := profileFrom(r.Context())
	rt, err := h.Runtimes.Get(r.Context(), sid, p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load checkout")
		return nil, false
	}
	return rt, true
}

func (h *CheckoutHandler) status(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	// retry QR generation if an earlier attempt failed, then fold in any
	// transition that came due between ticks
	_ = rt.Seq.Evaluate(r.Context())
	rt.Seq.Tick(r.Context())

	v := h.view(rt)
	h.cacheSnapshot(r.Context(), v)
	writeJSON(w, http.StatusOK, v)
}

func (h *CheckoutHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	if err := rt.Seq.ConfirmPayment(); err != nil {
		switch {
		case errors.Is(err, checkout.ErrAlreadyPaying):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusConflict, checkout.ErrQRNotReady.Error())
		}
		return
	}
	v := h.view(rt)
	h.cacheSnapshot(r.Context(), v)
	writeJSON(w, http.StatusAccepted, v)
}

func (h *CheckoutHandler) cancel(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rt.Seq.Tick(ctx)
	if err := rt.Seq.Cancel(ctx); err != nil {
		switch {
		case errors.Is(err, checkout.ErrWindowExpired):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusConflict, checkout.ErrNotCancellable.Error())
		}
		return
	}
	v := h.view(rt)
	h.cacheSnapshot(ctx, v)
	writeJSON(w, http.StatusOK, v)
}

func (h *CheckoutHandler) acknowledge(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.runtime(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := rt.Seq.Acknowledge(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "could not reset checkout")
		return
	}
	writeJSON(w, http.StatusOK, h.view(rt))
}

// cacheSnapshot keeps a short-lived status snapshot in redis for cheap
// polling dashboards.
func (h *CheckoutHandler) cacheSnapshot(ctx context.Context, v checkoutView) {
	if h.Redis == nil {
		return
	}
	sid, ok := sessionFrom(ctx)
	if !ok {
		return
	}
	key := fmt.Sprintf(redisx.KeyCheckoutStatus, sid)
	_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(v), redisx.TTLStatusCache).Err()
}
