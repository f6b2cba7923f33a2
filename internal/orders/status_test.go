package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPendingPayment, StatusProcessing, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusProcessing, StatusOutForDelivery, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusOutForDelivery, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusProcessing, StatusProcessing, false},
		{"bogus", StatusProcessing, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPendingPayment.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}

func TestEstimateDeliveryMinutes(t *testing.T) {
	assert.Equal(t, 0, EstimateDeliveryMinutes(0))
	assert.Equal(t, 17, EstimateDeliveryMinutes(1))
	assert.Equal(t, 19, EstimateDeliveryMinutes(2))
	assert.Equal(t, 25, EstimateDeliveryMinutes(5))
}
