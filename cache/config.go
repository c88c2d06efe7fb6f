package cache

import "github.com/cimnine/dhcp4c/cache/redis"

type CacheConfig struct {
	Redis redis.RedisConfig `yaml:"redis"`
}
