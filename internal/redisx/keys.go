package redisx

import "time"

const (
	// Session token: session:{token} -> identity JSON
	KeySession = "session:%s"

	// Cached order status: order_status:{order_id} -> {"status":"...","user_id":"..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
