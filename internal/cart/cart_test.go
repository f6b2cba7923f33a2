package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister()
	s := NewStore("sess-1", p)
	require.NoError(t, s.Load(context.Background()))
	return s, p
}

func line(id, name string, price float64) Line {
	return Line{
		ID:        id,
		Name:      name,
		UnitPrice: decimal.NewFromFloat(price),
		StallID:   "fc-aroma",
		StallName: "Aroma Food Court",
	}
}

func TestAddItemAppendsThenIncrements(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, line("a", "Paneer Tikka Roll", 150)))
	require.NoError(t, s.AddItem(ctx, line("b", "Samosa Plate", 70)))
	require.NoError(t, s.AddItem(ctx, line("a", "Paneer Tikka Roll", 150)))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].ID, "insertion order kept")
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 3, s.TotalItems())
	assert.Equal(t, "370.00", s.TotalPrice().StringFixed(2))
}

func TestTotalsAlwaysDerivedFromLines(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))
	require.NoError(t, s.AddItem(ctx, line("b", "Samosa", 70)))
	require.NoError(t, s.UpdateQuantity(ctx, "a", 4))
	require.NoError(t, s.UpdateQuantity(ctx, "b", 2))
	require.NoError(t, s.RemoveItem(ctx, "a"))
	require.NoError(t, s.AddItem(ctx, line("c", "Noodles", 120)))

	wantItems := 0
	wantPrice := decimal.Zero
	for _, l := range s.Lines() {
		wantItems += l.Quantity
		wantPrice = wantPrice.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.Equal(t, wantItems, s.TotalItems())
	assert.True(t, wantPrice.Equal(s.TotalPrice()))
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))
	require.NoError(t, s.UpdateQuantity(ctx, "a", 0))
	assert.Empty(t, s.Lines())

	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))
	require.NoError(t, s.UpdateQuantity(ctx, "a", -3))
	assert.Empty(t, s.Lines(), "negative quantity also removes")
}

func TestRemoveMissingItemIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))
	require.NoError(t, s.RemoveItem(ctx, "nope"))
	assert.Len(t, s.Lines(), 1)
}

func TestClearEmptiesLinesAndLocation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))
	require.NoError(t, s.SetLocation(ctx, "Block C, Room 4"))
	require.NoError(t, s.Clear(ctx))

	assert.Empty(t, s.Lines())
	assert.Empty(t, s.Location())
	assert.Equal(t, 0, s.TotalItems())
}

func TestMutationsPersistAndReload(t *testing.T) {
	p := NewMemoryPersister()
	ctx := context.Background()

	s := NewStore("sess-1", p)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))
	require.NoError(t, s.SetLocation(ctx, "Block C, Room 4"))

	// fresh store over the same persister sees the same state
	s2 := NewStore("sess-1", p)
	require.NoError(t, s2.Load(ctx))
	assert.Equal(t, s.Lines(), s2.Lines())
	assert.Equal(t, "Block C, Room 4", s2.Location())

	// other sessions are isolated
	s3 := NewStore("sess-2", p)
	require.NoError(t, s3.Load(ctx))
	assert.Empty(t, s3.Lines())
}

func TestCorruptSnapshotResetsToEmpty(t *testing.T) {
	p := NewMemoryPersister()
	ctx := context.Background()

	s := NewStore("sess-1", p)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.AddItem(ctx, line("a", "Roll", 150)))

	p.Corrupt("sess-1")

	s2 := NewStore("sess-1", p)
	require.NoError(t, s2.Load(ctx))
	assert.Empty(t, s2.Lines(), "malformed snapshot reads as empty cart")
}

func TestScenarioTwoItemTotals(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, line("roll", "Paneer Tikka Roll", 150.00)))
	require.NoError(t, s.AddItem(ctx, line("samosa", "Samosa Plate", 70.00)))

	assert.Equal(t, 2, s.TotalItems())
	assert.Equal(t, "220.00", s.TotalPrice().StringFixed(2))
}
