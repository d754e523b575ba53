package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StatusEntry is the cached view of an order that is cheap to serve
// without touching Postgres.
type StatusEntry struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// StatusCache keeps order status snapshots in Redis with a short TTL.
// Postgres stays the source of truth; a miss just falls through.
type StatusCache struct {
	RDB *redis.Client
}

func (c *StatusCache) Get(ctx context.Context, orderID string) (StatusEntry, bool, error) {
	key := fmt.Sprintf(KeyOrderStatus, orderID)
	s, err := c.RDB.Get(ctx, key).Result()
	if err == redis.Nil {
		return StatusEntry{}, false, nil
	}
	if err != nil {
		return StatusEntry{}, false, err
	}
	var e StatusEntry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return StatusEntry{}, false, err
	}
	return e, true, nil
}

func (c *StatusCache) Set(ctx context.Context, orderID string, e StatusEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(KeyOrderStatus, orderID)
	return c.RDB.Set(ctx, key, b, TTLStatusCache).Err()
}
