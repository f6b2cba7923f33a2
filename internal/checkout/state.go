package checkout

// State is the checkout sequencer's position in the cart-to-payment flow.
type State string

const (
	StateEditable          State = "EDITABLE"
	StateAwaitingQR        State = "AWAITING_QR"
	StateQRReady           State = "QR_READY"
	StatePaymentProcessing State = "PAYMENT_PROCESSING"
	StateCancellable       State = "CANCELLABLE"
	StateCancelled         State = "CANCELLED"
	StateFinalized         State = "FINALIZED"
)

var validNext = map[State]map[State]bool{
	StateEditable:          {StateAwaitingQR: true},
	StateAwaitingQR:        {StateQRReady: true, StateEditable: true},
	StateQRReady:           {StatePaymentProcessing: true, StateEditable: true},
	StatePaymentProcessing: {StateCancellable: true},
	StateCancellable:       {StateCancelled: true, StateFinalized: true},
	StateCancelled:         {},
	StateFinalized:         {},
}

func CanTransition(from, to State) bool {
	return validNext[from][to]
}

func (s State) IsTerminal() bool {
	return s == StateCancelled || s == StateFinalized
}

func (s State) String() string { return string(s) }
