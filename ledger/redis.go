package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// usedMarker is the opaque value stored under a reserved key. Only the key's
// presence matters.
const usedMarker = "used"

// Redis implements Ledger on a shared Redis instance, so the replay guarantee
// holds across load-balanced processes. Reserve maps to SET NX EX, Redis's
// atomic set-if-absent with expiry.
type Redis struct {
	client redis.Cmdable
}

// NewRedis creates a ledger on an existing Redis client.
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// NewRedisFromAddr creates a ledger with its own client for the given address.
func NewRedisFromAddr(addr, password string, db int) *Redis {
	return NewRedis(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// Has reports whether the key is present.
func (l *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("ledger: exists %q: %w", key, err)
	}
	return n > 0, nil
}

// Reserve records the key if absent. Expiry is enforced server-side so
// entries vanish without a cleanup job.
func (l *Redis) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, usedMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("ledger: setnx %q: %w", key, err)
	}
	return ok, nil
}

var _ Ledger = (*Redis)(nil)
