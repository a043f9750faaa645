package sessions

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a new Redis-backed session repository
func NewRedis(client redis.UniversalClient, ttl time.Duration) Repository {
	repo, err := NewRedisRepository(&RedisConfig{
		Client: client,
		TTL:    ttl,
	})
	if err != nil {
		// This should never happen with valid configuration
		panic(err)
	}
	return repo
}
