package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a shared redis instance. Used when
// several app instances must share one carrier token quota.
type Redis struct {
	client *redis.Client
}

// NewRedis creates new redis-backed cache
func NewRedis(addr string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	// an unreachable redis is treated the same as a miss
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}

	return val, true
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
