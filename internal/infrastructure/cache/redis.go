package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Throttle lets one caller per key through every window.
type Throttle struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

func NewThrottle(rdb *redis.Client, prefix string, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, prefix: prefix, window: window}
}

// Allow reports whether key has not been seen within the window, and marks
// it as seen.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	return t.rdb.SetNX(ctx, t.prefix+key, "1", t.window).Result()
}
