package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const calendarKeyPrefix = "calendar:"

// Calendar is a rendered calendar feed as stored in Redis.
type Calendar struct {
	Content  string    `json:"content"`
	Rows     int       `json:"rows"`
	CachedAt time.Time `json:"cached_at"`
}

// Cache keeps rendered calendar feeds in Redis so repeated reads skip the
// database and the generator.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr, "ttl", ttl.String())

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) GetCalendar(ctx context.Context, clientID string) (*Calendar, error) {
	key := calendarKey(clientID)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var calendar Calendar
	if err := json.Unmarshal(data, &calendar); err != nil {
		// Unreadable entries count as a miss
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			slog.Warn("Failed to delete invalid cache entry", "key", key, "error", delErr)
		}
		return nil, nil
	}

	return &calendar, nil
}

func (c *Cache) SetCalendar(ctx context.Context, clientID, content string, rows int) error {
	key := calendarKey(clientID)

	data, err := json.Marshal(Calendar{Content: content, Rows: rows, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) InvalidateCalendar(ctx context.Context, clientID string) error {
	key := calendarKey(clientID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Health(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if keyCount, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = keyCount
	}

	return health
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func calendarKey(clientID string) string {
	return calendarKeyPrefix + clientID
}
