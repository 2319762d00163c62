package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Backend keeping one hash per browser. Hashes expire with the
// cookie lifetime, so Purge has nothing to do.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps a go-redis client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, prefix: "portal:session:", ttl: CookieMaxAge}
}

// DialRedis connects to redis and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedis(rdb), nil
}

func (r *Redis) key(clientID string) string {
	return r.prefix + clientID
}

func (r *Redis) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key(clientID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, clientID, key, value string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(clientID), key, value)
		pipe.Expire(ctx, r.key(clientID), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, clientID, key string) error {
	if err := r.rdb.HDel(ctx, r.key(clientID), key).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Purge(context.Context, time.Time) error {
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
