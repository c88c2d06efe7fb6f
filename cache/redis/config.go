package redis

import "fmt"

type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      uint16 `yaml:"port"`
	Password  string `yaml:"password"`
	Database  uint   `yaml:"database"`
	KeyPrefix string `yaml:"key_prefix"`
}

func (c *RedisConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", host, port)
}
