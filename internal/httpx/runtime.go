package httpx

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/biterush/campusgrub/internal/cart"
	"github.com/biterush/campusgrub/internal/checkout"
	kafkax "github.com/biterush/campusgrub/internal/kafka"
	"github.com/biterush/campusgrub/internal/location"
	"github.com/biterush/campusgrub/internal/orders"
)

// ShopperRuntime is the in-process state for one logged-in session: its cart
// store, location setter and checkout sequencer, plus the ticker goroutine
// that drives the sequencer.
type ShopperRuntime struct {
	Cart   *cart.Store
	Setter *location.Setter
	Seq    *checkout.Sequencer
	cancel context.CancelFunc
}

// Runtimes owns all live shopper runtimes and the dependencies they share.
type Runtimes struct {
	Persister cart.Persister
	QR        checkout.ReferenceGenerator
	Clock     checkout.Clock
	Geo       location.Geolocator
	Orders    *orders.Repo
	Producer  *kafkax.Producer
	Service   string

	mu sync.Mutex
	m  map[string]*ShopperRuntime
}

func NewRuntimes() *Runtimes {
	return &Runtimes{m: map[string]*ShopperRuntime{}}
}

// Get returns the runtime for a session, creating and loading it on first
// use. The finalize hook persists the order and publishes order.placed.
func (rs *Runtimes) Get(ctx context.Context, sessionID, userID string) (*ShopperRuntime, error) {
	rs.mu.Lock()
	if rt, ok := rs.m[sessionID]; ok {
		rs.mu.Unlock()
		return rt, nil
	}
	rs.mu.Unlock()

	store := cart.NewStore(sessionID, rs.Persister)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	seq := checkout.NewSequencer(rs.Clock, rs.QR, store)
	seq.OnFinalize = rs.finalizeHook(userID)

	runCtx, cancel := context.WithCancel(context.Background())
	rt := &ShopperRuntime{
		Cart:   store,
		Setter: &location.Setter{Cart: store, Geo: rs.Geo},
		Seq:    seq,
		cancel: cancel,
	}

	rs.mu.Lock()
	if existing, ok := rs.m[sessionID]; ok {
		// lost the race; discard ours
		rs.mu.Unlock()
		cancel()
		return existing, nil
	}
	rs.m[sessionID] = rt
	rs.mu.Unlock()

	go seq.Run(runCtx)
	return rt, nil
}

// Drop tears a session's runtime down, stopping its ticker. Called on logout.
func (rs *Runtimes) Drop(sessionID string) {
	rs.mu.Lock()
	rt, ok := rs.m[sessionID]
	if ok {
		delete(rs.m, sessionID)
	}
	rs.mu.Unlock()
	if ok {
		rt.cancel()
	}
}

func (rs *Runtimes) finalizeHook(userID string) func(ctx context.Context, f checkout.Finalization) error {
	return func(ctx context.Context, f checkout.Finalization) error {
		items := make([]orders.Item, 0, len(f.Lines))
		qtyItems := make([]orders.ItemQty, 0, len(f.Lines))
		count := 0
		for _, l := range f.Lines {
			items = append(items, orders.Item{
				MenuItemID: l.ID,
				Name:       l.Name,
				UnitPrice:  l.UnitPrice,
				Quantity:   l.Quantity,
				StallID:    l.StallID,
				StallName:  l.StallName,
				ImageRef:   l.ImageRef,
			})
			qtyItems = append(qtyItems, orders.ItemQty{MenuItemID: l.ID, StallID: l.StallID, Qty: l.Quantity})
			count += l.Quantity
		}

		paidAt := f.PaidAt
		o := &orders.Order{
			ID:               uuid.NewString(),
			UserID:           userID,
			Items:            items,
			TotalPrice:       f.Total,
			Status:           orders.StatusProcessing,
			DeliveryLocation: f.Location,
			PaymentRef:       f.PaymentRef,
			PaidAt:           &paidAt,
			EstimatedMinutes: orders.EstimateDeliveryMinutes(count),
		}
		if err := rs.Orders.CreateOrder(ctx, o); err != nil {
			return err
		}

		if rs.Producer != nil {
			ev := orders.Envelope{
				EventID:       uuid.NewString(),
				EventType:     orders.EventOrderPlaced,
				EventVersion:  1,
				OccurredAt:    time.Now().UTC(),
				Producer:      rs.Service,
				CorrelationID: o.ID,
				Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
					OrderID:          o.ID,
					UserID:           o.UserID,
					Items:            qtyItems,
					TotalPrice:       o.TotalPrice.StringFixed(2),
					DeliveryLocation: o.DeliveryLocation,
					EstimatedMinutes: o.EstimatedMinutes,
				}),
			}
			rs.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
				kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
				kafkago.Header{Key: "x-event-version", Value: []byte("1")},
			)
		}
		return nil
	}
}
