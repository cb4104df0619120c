package creatures

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis creates a new Redis-backed creature repository with the wall clock
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client: client,
	})
}
