// Package payment simulates UPI payment initiation. Nothing here talks to a
// real gateway and nothing it produces is settlement authority; the reference
// string only exists so the storefront can render a scannable code.
package payment

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	payeeVPA  = "merchant-vpa@exampleupi"
	payeeName = "Biterush Campus Grub"
	currency  = "INR"

	// artificial network latency on reference generation
	simulatedDelay = 500 * time.Millisecond
)

// Simulator generates opaque UPI intent references. The zero value uses the
// real wall clock; tests override Now and Delay.
type Simulator struct {
	Now   func() time.Time
	Delay time.Duration
}

func NewSimulator() *Simulator {
	return &Simulator{Now: time.Now, Delay: simulatedDelay}
}

// GenerateReference returns a UPI intent string carrying payee, amount with
// two decimal places, currency and a unique time-derived order token.
// Interruption by ctx is retryable; the caller may simply invoke again.
func (s *Simulator) GenerateReference(ctx context.Context, total decimal.Decimal) (string, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", fmt.Errorf("qr generation interrupted: %w", ctx.Err())
		}
	}
	token := fmt.Sprintf("Order_%d_%s", s.Now().UnixMilli(), uuid.NewString()[:8])
	ref := fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=%s&tn=%s",
		payeeVPA,
		url.QueryEscape(payeeName),
		total.StringFixed(2),
		currency,
		token,
	)
	return ref, nil
}

// QRImageURL hands the reference to the third-party QR renderer. Only the
// reference string and the pixel size cross this boundary.
func QRImageURL(ref string, sizePx int) string {
	return fmt.Sprintf("https://api.qrserver.com/v1/create-qr-code/?size=%dx%d&data=%s",
		sizePx, sizePx, url.QueryEscape(ref))
}
