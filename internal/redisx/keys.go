package redisx

import "time"

const (
	// Cart per client: cart:{client_id} -> JSON array of cart items.
	KeyCart = "cart:%d"

	// Cache of order status: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%d"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart        = 7 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
