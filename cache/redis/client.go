package redis

import (
	"time"

	"github.com/go-redis/redis"
)

const ioTimeout = time.Second

// NewClient returns a client for the lease store. It connects lazily, so an
// unreachable server only shows up as errors on the first commands.
func NewClient(config *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         config.Addr(),
		Password:     config.Password,
		DB:           int(config.Database),
		DialTimeout:  2 * ioTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		MaxRetries:   1,
	})
}
