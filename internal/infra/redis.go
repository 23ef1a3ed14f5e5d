package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates the go-redis client backing the sync job queues.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Fail fast if the queue backend is unreachable
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
