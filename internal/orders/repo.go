package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrder writes the order and its denormalized items in one transaction.
func (r *Repo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, total_price, delivery_location,
		                   payment_ref, paid_at, estimated_minutes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, o.ID, o.UserID, string(o.Status), o.TotalPrice, o.DeliveryLocation,
		o.PaymentRef, o.PaidAt, o.EstimatedMinutes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, menu_item_id, name, unit_price, qty,
			                        stall_id, stall_name, image_ref)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			o.ID, it.MenuItemID, it.Name, it.UnitPrice, it.Quantity,
			it.StallID, it.StallName, it.ImageRef)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetOrder loads one order. A non-empty userID scopes the lookup to that
// owner; admin and vendor callers pass "".
func (r *Repo) GetOrder(ctx context.Context, orderID, userID string) (*Order, error) {
	q := `SELECT id, user_id, status, total_price, delivery_location, payment_ref,
	             paid_at, estimated_minutes, cancelled_at, cancel_reason, created_at, updated_at
	      FROM orders WHERE id=$1`
	args := []any{orderID}
	if userID != "" {
		q += ` AND user_id=$2`
		args = append(args, userID)
	}

	var o Order
	var status string
	err := r.DB.QueryRow(ctx, q, args...).Scan(
		&o.ID, &o.UserID, &status, &o.TotalPrice, &o.DeliveryLocation, &o.PaymentRef,
		&o.PaidAt, &o.EstimatedMinutes, &o.CancelledAt, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(status)

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repo) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return r.list(ctx, `WHERE status=$1 ORDER BY created_at DESC`, string(status))
}

func (r *Repo) list(ctx context.Context, where string, arg any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, total_price, delivery_location, payment_ref,
		       paid_at, estimated_minutes, cancelled_at, cancel_reason, created_at, updated_at
		FROM orders `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.TotalPrice, &o.DeliveryLocation,
			&o.PaymentRef, &o.PaidAt, &o.EstimatedMinutes, &o.CancelledAt, &o.CancelReason,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repo) loadItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT menu_item_id, name, unit_price, qty, stall_id, stall_name, image_ref
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.MenuItemID, &it.Name, &it.UnitPrice, &it.Quantity,
			&it.StallID, &it.StallName, &it.ImageRef); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order along the status machine; illegal moves are
// rejected before any write.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !CanTransition(Status(cur), to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, to)
	}

	if to == StatusCancelled {
		_, err = tx.Exec(ctx, `
			UPDATE orders SET status=$2, cancelled_at=now(), updated_at=now() WHERE id=$1`,
			orderID, string(to))
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`,
			orderID, string(to))
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
