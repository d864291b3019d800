package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

type redisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist stores revoked jti values in Redis with a TTL equal
// to the token's remaining lifetime.
func NewRedisTokenBlacklist(client *redis.Client) TokenBlacklist {
	return &redisTokenBlacklist{client: client}
}

func (r *redisTokenBlacklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// already expired, nothing to guard
		return nil
	}

	if err := r.client.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

func (r *redisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}
