package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dashboard cache keys
const (
	DashboardPattern     = "dashboard:*"
	DashboardSummaryFmt  = "dashboard:summary:%d"
	DashboardMonthlyFmt  = "dashboard:monthly:%d"
	DashboardCustomerFmt = "dashboard:customers:%d"
	DashboardSectionsKey = "dashboard:sections"
)

var client *redis.Client

// Init connects to Redis. On failure the client stays nil and every helper
// below becomes a no-op, so the service runs uncached.
func Init(host, port, password string) error {
	c := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

func GetClient() *redis.Client {
	return client
}

func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] set %s failed: %v", key, err)
	}
}

// InvalidatePattern removes every key matching pattern.
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[Cache] scan %s failed: %v", pattern, err)
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateDashboard drops every cached dashboard figure.
func InvalidateDashboard(ctx context.Context) {
	InvalidatePattern(ctx, DashboardPattern)
}

func DashboardKey(format string, arg int) string {
	return fmt.Sprintf(format, arg)
}
