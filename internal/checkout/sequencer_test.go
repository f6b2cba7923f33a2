package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biterush/campusgrub/internal/cart"
	"github.com/biterush/campusgrub/internal/payment"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGenerator) GenerateReference(_ context.Context, total decimal.Decimal) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "upi://pay?pa=test&am=" + total.StringFixed(2) + "&cu=INR&tn=Order_test", nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fixture struct {
	clock *fakeClock
	gen   *fakeGenerator
	store *cart.Store
	seq   *Sequencer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	gen := &fakeGenerator{}
	store := cart.NewStore("sess-1", cart.NewMemoryPersister())
	require.NoError(t, store.Load(context.Background()))
	return &fixture{clock: clock, gen: gen, store: store, seq: NewSequencer(clock, gen, store)}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.AddItem(ctx, cart.Line{ID: "roll", Name: "Paneer Tikka Roll", UnitPrice: decimal.NewFromFloat(150)}))
	require.NoError(t, f.store.AddItem(ctx, cart.Line{ID: "samosa", Name: "Samosa Plate", UnitPrice: decimal.NewFromFloat(70)}))
}

// readyCart fills the cart, sets a location and drives to QR_READY.
func (f *fixture) readyCart(t *testing.T) {
	t.Helper()
	f.fillCart(t)
	require.NoError(t, f.store.SetLocation(context.Background(), "Block C, Room 4"))
	require.NoError(t, f.seq.Evaluate(context.Background()))
	require.Equal(t, StateQRReady, f.seq.State())
}

// cancellable drives the fixture all the way into the cancellation window.
func (f *fixture) cancellable(t *testing.T) {
	t.Helper()
	f.readyCart(t)
	require.NoError(t, f.seq.ConfirmPayment())
	f.clock.Advance(2 * time.Second)
	f.seq.Tick(context.Background())
	require.Equal(t, StateCancellable, f.seq.State())
}

func TestEvaluateNeedsCartLocationAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.seq.Evaluate(ctx))
	assert.Equal(t, StateEditable, f.seq.State(), "empty cart does not fire")

	f.fillCart(t)
	require.NoError(t, f.seq.Evaluate(ctx))
	assert.Equal(t, StateEditable, f.seq.State(), "no location yet")
	assert.Zero(t, f.gen.callCount())

	require.NoError(t, f.store.SetLocation(ctx, "Block C, Room 4"))
	require.NoError(t, f.seq.Evaluate(ctx))
	assert.Equal(t, StateQRReady, f.seq.State())
	assert.Contains(t, f.seq.QRRef(), "am=220.00")
	assert.Contains(t, f.seq.QRRef(), "cu=INR")
}

func TestEvaluateIdempotentWhileReady(t *testing.T) {
	f := newFixture(t)
	f.readyCart(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.seq.Evaluate(context.Background()))
	}
	assert.Equal(t, 1, f.gen.callCount(), "no duplicate simulator calls")
}

func TestEvaluateFailureIsRecoverable(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	require.NoError(t, f.store.SetLocation(context.Background(), "Block C"))

	f.gen.err = errors.New("simulated outage")
	err := f.seq.Evaluate(context.Background())
	assert.ErrorIs(t, err, ErrQRGeneration)
	assert.Equal(t, StateEditable, f.seq.State())
	assert.Empty(t, f.seq.QRRef())

	f.gen.err = nil
	require.NoError(t, f.seq.Evaluate(context.Background()))
	assert.Equal(t, StateQRReady, f.seq.State())
}

func TestCartChangeDiscardsReference(t *testing.T) {
	f := newFixture(t)
	f.readyCart(t)

	require.NoError(t, f.store.AddItem(context.Background(), cart.Line{ID: "noodles", UnitPrice: decimal.NewFromFloat(120)}))
	f.seq.CartChanged()

	assert.Equal(t, StateEditable, f.seq.State())
	assert.Empty(t, f.seq.QRRef(), "reference is bound to the old total")

	// regenerated with the new total
	require.NoError(t, f.seq.Evaluate(context.Background()))
	assert.Contains(t, f.seq.QRRef(), "am=340.00")
}

func TestConfirmPaymentRequiresReference(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.seq.ConfirmPayment(), ErrQRNotReady)

	f.readyCart(t)
	require.NoError(t, f.seq.ConfirmPayment())
	assert.Equal(t, StatePaymentProcessing, f.seq.State())
	assert.ErrorIs(t, f.seq.ConfirmPayment(), ErrAlreadyPaying)
}

func TestProcessingDelayThenCancellationWindow(t *testing.T) {
	f := newFixture(t)
	f.readyCart(t)
	require.NoError(t, f.seq.ConfirmPayment())

	f.seq.Tick(context.Background())
	assert.Equal(t, StatePaymentProcessing, f.seq.State(), "delay not elapsed yet")

	f.clock.Advance(2 * time.Second)
	f.seq.Tick(context.Background())
	assert.Equal(t, StateCancellable, f.seq.State())
	assert.Equal(t, 120, f.seq.SecondsRemaining(), "deadline = completion + 120s")
	assert.False(t, f.seq.CanModifyCart(), "read-only from payment processing onward")
}

func TestCountdownDerivedFromWallClock(t *testing.T) {
	f := newFixture(t)
	f.cancellable(t)

	// a suspended driver catches up from absolute timestamps
	f.clock.Advance(45 * time.Second)
	assert.Equal(t, 75, f.seq.SecondsRemaining())
	f.clock.Advance(45 * time.Second)
	assert.Equal(t, 30, f.seq.SecondsRemaining())
}

func TestCancelInsideWindow(t *testing.T) {
	f := newFixture(t)
	f.cancellable(t)

	f.clock.Advance(90 * time.Second)
	f.seq.Tick(context.Background())
	require.Equal(t, StateCancellable, f.seq.State())

	require.NoError(t, f.seq.Cancel(context.Background()))
	assert.Equal(t, StateCancelled, f.seq.State())
	assert.Empty(t, f.store.Lines(), "cart cleared")
	assert.Empty(t, f.store.Location(), "location cleared")
}

func TestExpiryFinalizesAndLocks(t *testing.T) {
	f := newFixture(t)

	var finalized []Finalization
	f.seq.OnFinalize = func(_ context.Context, fin Finalization) error {
		finalized = append(finalized, fin)
		return nil
	}
	f.cancellable(t)

	f.clock.Advance(121 * time.Second)
	f.seq.Tick(context.Background())

	require.Equal(t, StateFinalized, f.seq.State())
	require.Len(t, finalized, 1)
	assert.Equal(t, "220.00", finalized[0].Total.StringFixed(2))
	assert.Equal(t, "Block C, Room 4", finalized[0].Location)
	assert.NotEmpty(t, finalized[0].PaymentRef)
	assert.False(t, f.seq.CanModifyCart())

	// no way back into the window
	assert.ErrorIs(t, f.seq.Cancel(context.Background()), ErrWindowExpired)
	assert.Equal(t, StateFinalized, f.seq.State())

	f.seq.Tick(context.Background())
	assert.Len(t, finalized, 1, "finalize fires once")
}

func TestCancelAfterDeadlineWithoutTickStillFinalizes(t *testing.T) {
	f := newFixture(t)
	f.cancellable(t)

	// deadline passes but no tick has observed it yet
	f.clock.Advance(121 * time.Second)
	err := f.seq.Cancel(context.Background())
	assert.ErrorIs(t, err, ErrWindowExpired)
	assert.Equal(t, StateFinalized, f.seq.State(), "expired cancel finalizes, never cancels")
}

func TestCancelOutsideCancellableStates(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.seq.Cancel(context.Background()), ErrNotCancellable)

	f.readyCart(t)
	assert.ErrorIs(t, f.seq.Cancel(context.Background()), ErrNotCancellable)
}

func TestAcknowledgeResetsTerminalSequencer(t *testing.T) {
	f := newFixture(t)
	f.cancellable(t)
	f.clock.Advance(121 * time.Second)
	f.seq.Tick(context.Background())
	require.Equal(t, StateFinalized, f.seq.State())

	require.NoError(t, f.seq.Acknowledge(context.Background()))
	assert.Equal(t, StateEditable, f.seq.State())
	assert.Empty(t, f.seq.QRRef())
	assert.Empty(t, f.store.Lines(), "finalized cart flushed on acknowledgment")
}

func TestRunKeepsDrivingAfterAcknowledge(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	finals := 0
	f.seq.OnFinalize = func(_ context.Context, _ Finalization) error {
		mu.Lock()
		finals++
		mu.Unlock()
		return nil
	}
	go f.seq.Run(ctx)

	// first checkout expires and is acknowledged
	f.cancellable(t)
	f.clock.Advance(3 * time.Minute)
	require.Eventually(t, func() bool { return f.seq.State() == StateFinalized },
		3*time.Second, 50*time.Millisecond)
	require.NoError(t, f.seq.Acknowledge(context.Background()))
	require.Equal(t, StateEditable, f.seq.State())

	// second checkout must finalize on the background driver alone
	f.fillCart(t)
	require.NoError(t, f.store.SetLocation(context.Background(), "Block C, Room 4"))
	require.NoError(t, f.seq.Evaluate(context.Background()))
	require.NoError(t, f.seq.ConfirmPayment())
	f.clock.Advance(5 * time.Minute)
	require.Eventually(t, func() bool { return f.seq.State() == StateFinalized },
		3*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, finals)
}

func TestRealSimulatorEndToEnd(t *testing.T) {
	clock := newFakeClock()
	store := cart.NewStore("sess-1", cart.NewMemoryPersister())
	require.NoError(t, store.Load(context.Background()))

	sim := payment.NewSimulator()
	sim.Delay = 0
	seq := NewSequencer(clock, sim, store)

	ctx := context.Background()
	require.NoError(t, store.AddItem(ctx, cart.Line{ID: "roll", UnitPrice: decimal.NewFromFloat(150)}))
	require.NoError(t, store.AddItem(ctx, cart.Line{ID: "samosa", UnitPrice: decimal.NewFromFloat(70)}))
	require.NoError(t, store.SetLocation(ctx, "Block C, Room 4"))

	require.NoError(t, seq.Evaluate(ctx))
	require.Equal(t, StateQRReady, seq.State())
	assert.Contains(t, seq.QRRef(), "am=220.00")
	assert.Contains(t, seq.QRRef(), "cu=INR")
}
