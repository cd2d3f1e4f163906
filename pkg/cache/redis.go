// Package cache backs the session slot with Redis: one live token maps to
// one user id under a fixed key prefix, with the TTL doubling as session
// expiry.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "edunova:session:"

type SessionCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewSessionCache(addr string) *SessionCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &SessionCache{
		client: client,
		ctx:    context.Background(),
	}
}

// Ping verifies the connection at startup.
func (c *SessionCache) Ping() error {
	return c.client.Ping(c.ctx).Err()
}

func (c *SessionCache) Save(token, userID string, ttl time.Duration) error {
	return c.client.Set(c.ctx, sessionPrefix+token, userID, ttl).Err()
}

func (c *SessionCache) UserID(token string) (string, error) {
	return c.client.Get(c.ctx, sessionPrefix+token).Result()
}

func (c *SessionCache) Delete(token string) error {
	return c.client.Del(c.ctx, sessionPrefix+token).Err()
}
