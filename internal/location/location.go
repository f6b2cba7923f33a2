package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biterush/campusgrub/internal/cart"
)

// Geolocator resolves the shopper's device position. It may block on a
// permission prompt and is bounded by the caller's context deadline.
type Geolocator interface {
	Locate(ctx context.Context) (Position, error)
}

type Position struct {
	Lat float64
	Lon float64
}

// Classified geolocation failures. Anything else maps to ErrUnknown.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location information is unavailable")
	ErrTimeout             = errors.New("location request timed out")
	ErrUnknown             = errors.New("failed to get current location")

	ErrEmptyLocation = errors.New("delivery location must not be empty")
)

// DefaultTimeout bounds a device-location request; the geolocator may block
// forever on an ignored permission prompt, so the caller enforces the limit.
const DefaultTimeout = 10 * time.Second

// Setter validates and stores the delivery location on a cart store.
type Setter struct {
	Cart    *cart.Store
	Geo     Geolocator
	Timeout time.Duration // 0 means DefaultTimeout
}

// Set trims the input and stores it. Empty or whitespace-only input is a
// validation error and leaves the stored location unchanged.
func (s *Setter) Set(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyLocation
	}
	return s.Cart.SetLocation(ctx, trimmed)
}

// UseDevice asks the geolocator for coordinates, bounded to 10 seconds, and
// stores them as "Lat: X, Lon: Y" with 4 decimal places. On failure the
// stored location is left untouched and the error is classified.
func (s *Setter) UseDevice(ctx context.Context) (string, error) {
	if s.Geo == nil {
		return "", ErrPositionUnavailable
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := s.Geo.Locate(ctx)
	if err != nil {
		return "", Classify(err)
	}
	loc := fmt.Sprintf("Lat: %.4f, Lon: %.4f", pos.Lat, pos.Lon)
	if err := s.Cart.SetLocation(ctx, loc); err != nil {
		return "", err
	}
	return loc, nil
}

// Static returns a Geolocator that always reports the given coordinates.
// Used when the client already resolved its own position.
func Static(lat, lon float64) Geolocator {
	return staticGeo{Position{Lat: lat, Lon: lon}}
}

type staticGeo struct{ pos Position }

func (g staticGeo) Locate(context.Context) (Position, error) { return g.pos, nil }

// Classify folds an arbitrary geolocator error into the fixed taxonomy.
func Classify(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrPositionUnavailable),
		errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return ErrUnknown
	}
}
