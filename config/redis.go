package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfigured reports whether any Redis setting was supplied or the
// cart store itself needs Redis.
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisAddr != "" || c.StoreDriver == DriverRedis
}

func ConnectRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	var opt *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		opt = &redis.Options{
			Addr:         addr,
			Password:     cfg.RedisPassword,
			DB:           0,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
