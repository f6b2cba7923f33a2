package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{StateEditable, StateAwaitingQR, true},
		{StateEditable, StateQRReady, false},
		{StateAwaitingQR, StateQRReady, true},
		{StateAwaitingQR, StateEditable, true},
		{StateQRReady, StatePaymentProcessing, true},
		{StateQRReady, StateEditable, true},
		{StatePaymentProcessing, StateCancellable, true},
		{StatePaymentProcessing, StateEditable, false},
		{StateCancellable, StateCancelled, true},
		{StateCancellable, StateFinalized, true},
		{StateCancelled, StateEditable, false},
		{StateFinalized, StateCancellable, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStateIsTerminal(t *testing.T) {
	assert.True(t, StateCancelled.IsTerminal())
	assert.True(t, StateFinalized.IsTerminal())
	for _, s := range []State{StateEditable, StateAwaitingQR, StateQRReady, StatePaymentProcessing, StateCancellable} {
		assert.False(t, s.IsTerminal(), s)
	}
}
