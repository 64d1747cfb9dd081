package redis

import (
	"github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// Options configures the connection. Empty fields fall back to the environment.
type Options struct {
	Addr     string
	Password string
	DB       int
}

func RedisClient(opts Options) *redis.Client {
	if opts.Addr == "" {
		opts.Addr = global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
	}
	if opts.Password == "" {
		opts.Password = global.GetEnvOrDefault("REDIS_PASSWORD", "")
	}
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		Protocol: 2,
	})
}
