package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"workforce/internal/daykey"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

const activeKeyPrefix = "workforce:active:"

// activeTTL keeps per-day counters around long enough to cover the current
// and previous day, then lets them expire.
const activeTTL = 48 * time.Hour

// IncrActive bumps the live active-member counter for a day.
func (r *Redis) IncrActive(ctx context.Context, day daykey.Key) error {
	key := activeKeyPrefix + day.String()
	if err := r.Client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return r.Client.Expire(ctx, key, activeTTL).Err()
}

// DecrActive lowers the live active-member counter for a day. A missing
// counter is left alone: the matching check-in predates the key or the key
// expired, and decrementing would create a negative gauge.
func (r *Redis) DecrActive(ctx context.Context, day daykey.Key) error {
	key := activeKeyPrefix + day.String()
	exists, err := r.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	return r.Client.Decr(ctx, key).Err()
}

// ActiveCount reads the live counter, floored at zero; 0 when absent or
// redis is down. The counter is a cheap gauge only, the ledger stays
// authoritative.
func (r *Redis) ActiveCount(ctx context.Context, day daykey.Key) int {
	if r == nil || r.Client == nil {
		return 0
	}
	n, err := r.Client.Get(ctx, activeKeyPrefix+day.String()).Int()
	if err != nil || n < 0 {
		return 0
	}
	return n
}
