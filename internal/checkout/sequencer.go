package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biterush/campusgrub/internal/cart"
)

const (
	// CancellationWindow is how long after simulated payment completion the
	// shopper may still cancel.
	CancellationWindow = 2 * time.Minute

	// processingDelay simulates the scan-and-pay roundtrip.
	processingDelay = 1500 * time.Millisecond

	tickResolution = time.Second
)

var (
	ErrCartLocked     = errors.New("order finalized: cart can no longer be modified")
	ErrQRNotReady     = errors.New("qr code not ready: set a location and wait for generation")
	ErrAlreadyPaying  = errors.New("payment simulation already in progress")
	ErrNotCancellable = errors.New("cancellation is not currently possible")
	ErrWindowExpired  = errors.New("the cancellation window has expired")
	ErrQRGeneration   = errors.New("failed to generate payment qr code")
)

// ReferenceGenerator produces an opaque payment reference for a total amount.
type ReferenceGenerator interface {
	GenerateReference(ctx context.Context, total decimal.Decimal) (string, error)
}

// Finalization is the order snapshot handed out when the cancellation window
// closes without a cancellation.
type Finalization struct {
	Lines      []cart.Line
	Total      decimal.Decimal
	Location   string
	PaymentRef string
	PaidAt     time.Time
}

// Sequencer drives one shopper's checkout through
// EDITABLE -> AWAITING_QR -> QR_READY -> PAYMENT_PROCESSING -> CANCELLABLE ->
// CANCELLED | FINALIZED. All timing is wall-clock comparison against the
// injected Clock; the Run driver only supplies ticks.
type Sequencer struct {
	mu    sync.Mutex
	clock Clock
	qr    ReferenceGenerator
	cart  *cart.Store

	state              State
	qrRef              string
	processingDoneAt   time.Time
	paymentCompletedAt time.Time
	deadline           time.Time

	// OnFinalize runs exactly once when the window expires. Failures are
	// logged; the state still moves to FINALIZED.
	OnFinalize func(ctx context.Context, f Finalization) error
}

func NewSequencer(clock Clock, qr ReferenceGenerator, store *cart.Store) *Sequencer {
	return &Sequencer{clock: clock, qr: qr, cart: store, state: StateEditable}
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) QRRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qrRef
}

// CanModifyCart reports whether cart lines and location may still change.
// Controls go read-only from PAYMENT_PROCESSING onward.
func (s *Sequencer) CanModifyCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEditable, StateAwaitingQR, StateQRReady:
		return true
	default:
		return false
	}
}

// Evaluate fires the EDITABLE -> AWAITING_QR transition when the cart is
// non-empty, a location is set and the total is positive. A reference already
// present makes this a no-op, so repeated calls never duplicate simulator
// work. On simulator failure the state falls back to EDITABLE and the error
// is recoverable: the next qualifying Evaluate retries.
func (s *Sequencer) Evaluate(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateEditable || s.qrRef != "" {
		s.mu.Unlock()
		return nil
	}
	total := s.cart.TotalPrice()
	if s.cart.TotalItems() == 0 || s.cart.Location() == "" || !total.IsPositive() {
		s.mu.Unlock()
		return nil
	}
	s.to(StateAwaitingQR)
	s.mu.Unlock()

	ref, err := s.qr.GenerateReference(ctx, total)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingQR {
		// superseded while we waited; discard the result
		return nil
	}
	if err != nil {
		s.to(StateEditable)
		return fmt.Errorf("%w: %v", ErrQRGeneration, err)
	}
	s.qrRef = ref
	s.to(StateQRReady)
	return nil
}

// ConfirmPayment is the explicit "simulate scan/pay" action. Payment never
// auto-completes on QR render; this deliberate step avoids a false-positive
// payment.
func (s *Sequencer) ConfirmPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateQRReady:
	case StatePaymentProcessing:
		return ErrAlreadyPaying
	default:
		return ErrQRNotReady
	}
	s.to(StatePaymentProcessing)
	s.processingDoneAt = s.clock.Now().Add(processingDelay)
	return nil
}

// Tick advances time-driven transitions. It is safe to call at any cadence;
// everything is recomputed from absolute timestamps.
func (s *Sequencer) Tick(ctx context.Context) {
	s.mu.Lock()
	now := s.clock.Now()

	if s.state == StatePaymentProcessing && !now.Before(s.processingDoneAt) {
		s.to(StateCancellable)
		s.paymentCompletedAt = s.processingDoneAt
		s.deadline = s.paymentCompletedAt.Add(CancellationWindow)
	}

	if s.state == StateCancellable && !now.Before(s.deadline) {
		s.finalizeLocked(ctx)
	}
	s.mu.Unlock()
}

// Cancel is permitted only inside the cancellation window. It clears the cart
// and the checkout session entirely; nothing is refunded because nothing was
// ever captured.
func (s *Sequencer) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCancellable {
		expired := s.state == StateFinalized
		s.mu.Unlock()
		if expired {
			return ErrWindowExpired
		}
		return ErrNotCancellable
	}
	if !s.clock.Now().Before(s.deadline) {
		// expired between ticks: finalize, never cancel
		s.finalizeLocked(ctx)
		s.mu.Unlock()
		return ErrWindowExpired
	}
	s.to(StateCancelled)
	s.mu.Unlock()

	return s.cart.Clear(ctx)
}

// Acknowledge resets a terminal sequencer so the session can shop again.
func (s *Sequencer) Acknowledge(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.IsTerminal() {
		s.mu.Unlock()
		return nil
	}
	wasFinalized := s.state == StateFinalized
	s.reset()
	s.mu.Unlock()

	if wasFinalized {
		return s.cart.Clear(ctx)
	}
	return nil
}

// CartChanged must be called after any cart or location mutation. Before
// PAYMENT_PROCESSING it drops the stored reference and falls back to
// EDITABLE: the reference is bound to the total and location at generation
// time, so it has to be regenerated.
func (s *Sequencer) CartChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAwaitingQR, StateQRReady:
		s.qrRef = ""
		s.to(StateEditable)
	}
}

// SecondsRemaining is the whole seconds left in the cancellation window, 0
// outside of CANCELLABLE.
func (s *Sequencer) SecondsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCancellable {
		return 0
	}
	rem := s.deadline.Sub(s.clock.Now())
	if rem < 0 {
		return 0
	}
	return int((rem + tickResolution - 1) / tickResolution)
}

// Run drives Tick at 1-second resolution until ctx is cancelled. It must
// outlive terminal states: Acknowledge resets the sequencer and the next
// checkout still needs its driver. The caller owns teardown; cancelling ctx
// is how a superseded session stops its timer.
func (s *Sequencer) Run(ctx context.Context) {
	t := time.NewTicker(tickResolution)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick(ctx)
		}
	}
}

func (s *Sequencer) finalizeLocked(ctx context.Context) {
	f := Finalization{
		Lines:      s.cart.Lines(),
		Total:      s.cart.TotalPrice(),
		Location:   s.cart.Location(),
		PaymentRef: s.qrRef,
		PaidAt:     s.paymentCompletedAt,
	}
	s.to(StateFinalized)
	if s.OnFinalize != nil {
		if err := s.OnFinalize(ctx, f); err != nil {
			log.Printf("finalize order: %v", err)
		}
	}
}

func (s *Sequencer) reset() {
	s.state = StateEditable
	s.qrRef = ""
	s.processingDoneAt = time.Time{}
	s.paymentCompletedAt = time.Time{}
	s.deadline = time.Time{}
}

// to asserts the transition map; a violation is a programming error.
func (s *Sequencer) to(next State) {
	if !CanTransition(s.state, next) {
		panic(fmt.Sprintf("checkout: illegal transition %s -> %s", s.state, next))
	}
	s.state = next
}
