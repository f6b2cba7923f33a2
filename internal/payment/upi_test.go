package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 4, 2, 12, 30, 0, 0, time.UTC)
}

func TestGenerateReferenceShape(t *testing.T) {
	s := &Simulator{Now: fixedNow, Delay: 0}

	ref, err := s.GenerateReference(context.Background(), decimal.NewFromFloat(220))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "upi://pay?pa=merchant-vpa@exampleupi&"), ref)
	assert.Contains(t, ref, "am=220.00")
	assert.Contains(t, ref, "cu=INR")
	assert.Contains(t, ref, "tn=Order_")
	assert.NotContains(t, ref, " ", "payee name must be url-encoded")
}

func TestGenerateReferenceUniqueTokens(t *testing.T) {
	s := &Simulator{Now: fixedNow, Delay: 0}
	ctx := context.Background()

	a, err := s.GenerateReference(ctx, decimal.NewFromInt(100))
	require.NoError(t, err)
	b, err := s.GenerateReference(ctx, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "token must be unique per call")
}

func TestGenerateReferenceInterrupted(t *testing.T) {
	s := &Simulator{Now: fixedNow, Delay: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GenerateReference(ctx, decimal.NewFromInt(100))
	assert.Error(t, err, "interruption is an error the caller may retry")
}

func TestQRImageURL(t *testing.T) {
	u := QRImageURL("upi://pay?pa=x&am=1.00", 200)
	assert.True(t, strings.HasPrefix(u, "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data="))
	assert.Contains(t, u, "upi%3A%2F%2Fpay")
	assert.NotContains(t, u, "pa=x&am", "reference must be query-escaped")
}
