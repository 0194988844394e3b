package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:"

// Denylist stores revoked token ids in Redis. Entries expire with the token
// they revoke, so the set never needs pruning.
// Key format: denylist:<jti>
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke uses SET NX so that exactly one caller wins the key across all
// instances sharing this Redis.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	added, err := d.client.SetNX(ctx, d.key(tokenID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("denylist revoke: %w", err)
	}
	return added, nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

func (d *Denylist) key(tokenID string) string {
	return denylistPrefix + tokenID
}
