package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix namespaces console session records.
const SessionKeyPrefix = "@ConsultorioOdonto:session:"

var client *redis.Client

// Init connects to Redis. On failure the client stays nil so callers can
// fall back to another session store.
func Init(addr, password string, db int) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client, nil when Init failed or was never called
func GetClient() *redis.Client {
	return client
}

// IsHealthy returns true if the Redis connection answers a ping
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
