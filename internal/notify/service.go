// Package notify is the vendor-side worker: it consumes order.placed events
// and advances each order onto the delivery feed the storefront used to fake
// client-side.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/biterush/campusgrub/internal/kafka"
	"github.com/biterush/campusgrub/internal/orders"
	"github.com/biterush/campusgrub/internal/redisx"
)

// OrderStore is the slice of the order ledger this worker needs.
type OrderStore interface {
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) error
}

// Dedup tracks which event ids have been fully handled.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// RedisDedup keys handled events under dedup:{service}:{event_id}.
type RedisDedup struct {
	RDB     *redis.Client
	Service string
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.RDB, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID))
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	key := fmt.Sprintf(redisx.KeyDedup, d.Service, eventID)
	return d.RDB.Set(ctx, key, "1", redisx.TTLDedup).Err()
}

type Service struct {
	Repo        OrderStore
	Dedup       Dedup
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler for order.placed. The
// event id is marked in the dedup set only once it is fully handled; a
// transient ledger failure leaves the id unmarked so the redelivery retries
// instead of being swallowed.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil // ignore
	}

	seen, _ := s.Dedup.Seen(ctx, env.EventID)
	if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	err = s.Repo.UpdateStatus(ctx, p.OrderID, orders.StatusOutForDelivery)
	switch {
	case err == nil:
		log.Printf("order %s out for delivery (eta %dm, %s)",
			p.OrderID, p.EstimatedMinutes, p.DeliveryLocation)
	case errors.Is(err, orders.ErrInvalidTransition):
		// replay against an already-advanced order; nothing to do
	case errors.Is(err, orders.ErrNotFound):
		log.Printf("order %s placed event with no ledger row", p.OrderID)
	default:
		return err
	}

	if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
		log.Printf("dedup mark %s: %v", env.EventID, err)
	}
	return nil
}
