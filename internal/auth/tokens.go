package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/corregomitas/storefront/internal/redisx"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenStore issues and verifies opaque bearer tokens. Handlers only
// ever see this interface, so the actual issuer is swappable in tests.
type TokenStore interface {
	Issue(ctx context.Context, id Identity) (string, error)
	Verify(ctx context.Context, token string) (Identity, error)
}

// RedisTokens stores one session per token under session:{token} with a
// sliding 24h TTL.
type RedisTokens struct {
	RDB *redis.Client
}

func (t *RedisTokens) Issue(ctx context.Context, id Identity) (string, error) {
	token := uuid.NewString()
	b, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := t.RDB.Set(ctx, key, b, redisx.TTLSession).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (t *RedisTokens) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	key := fmt.Sprintf(redisx.KeySession, token)
	s, err := t.RDB.Get(ctx, key).Result()
	if err == redis.Nil {
		return Identity{}, ErrInvalidToken
	}
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	if err := json.Unmarshal([]byte(s), &id); err != nil {
		return Identity{}, ErrInvalidToken
	}
	// refresh the TTL on use
	_ = t.RDB.Expire(ctx, key, redisx.TTLSession).Err()
	return id, nil
}
