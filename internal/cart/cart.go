package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one cart entry, denormalized from the menu item at add time so the
// cart survives menu edits.
type Line struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	StallID   string          `json:"stall_id"`
	StallName string          `json:"stall_name"`
	ImageRef  string          `json:"image_ref,omitempty"`
}

// Store holds one shopper's cart lines and delivery location. It is scoped to
// a single session and persisted through the injected Persister on every
// mutation. Totals are always derived from the lines, never stored.
type Store struct {
	mu        sync.Mutex
	sessionID string
	persist   Persister
	lines     []Line
	location  string
}

func NewStore(sessionID string, p Persister) *Store {
	return &Store{sessionID: sessionID, persist: p}
}

// Load replaces in-memory state with whatever the persister has. A corrupt
// snapshot is treated as an empty cart (the persister logs and resets).
func (s *Store) Load(ctx context.Context) error {
	lines, loc, err := s.persist.Load(ctx, s.sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lines = lines
	s.location = loc
	s.mu.Unlock()
	return nil
}

// AddItem appends a new line with quantity 1, or bumps the quantity when a
// line with the same id already exists. Always succeeds.
func (s *Store) AddItem(ctx context.Context, item Line) error {
	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ID == item.ID {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		s.lines = append(s.lines, item)
	}
	s.mu.Unlock()
	return s.save(ctx)
}

// UpdateQuantity sets the line's quantity; qty <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, id)
	}
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Quantity = qty
			break
		}
	}
	s.mu.Unlock()
	return s.save(ctx)
}

// RemoveItem drops the line if present, no-op otherwise.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return s.save(ctx)
}

// Clear empties the lines and drops the delivery location with them.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = nil
	s.location = ""
	s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) SetLocation(ctx context.Context, loc string) error {
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Lines returns a copy in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (s *Store) save(ctx context.Context) error {
	s.mu.Lock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	loc := s.location
	s.mu.Unlock()
	return s.persist.Save(ctx, s.sessionID, lines, loc)
}
