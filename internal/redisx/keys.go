package redisx

import "time"

const (
	// Shopper session: session:{session_id} -> {"id","username","email","role"}
	KeySession = "session:%s"

	// Cart persistence, the two durable entries a shopper owns:
	// cart lines as a JSON array, delivery location as a plain string.
	KeyCartLines    = "cart:lines:%s"
	KeyCartLocation = "cart:location:%s"

	// Checkout status snapshot for cheap polling: checkout:{session_id}
	KeyCheckoutStatus = "checkout:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 24 * time.Hour
	TTLCart        = 7 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
