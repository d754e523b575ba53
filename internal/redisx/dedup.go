package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Dedup marks processed event ids so redelivered messages are skipped.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

// Seen reports whether the event was already processed and records it if not.
func (d *Dedup) Seen(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, d.Service, eventID)
	ok, err := d.RDB.SetNX(ctx, key, "1", TTLDedup).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
