package storage

import (
	"context"
	"fmt"
	"time"

	"wedding-site/internal/domain"

	"github.com/go-redis/redis/v8"
)

// fixedWindowScript performs check-then-increment atomically on the server.
// A denied request does not touch the counter. Returns {allowed, count, pttl}.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = redis.call('GET', key)
if not current then
	redis.call('SET', key, 1, 'PX', window)
	return {1, 1, window}
end

local ttl = redis.call('PTTL', key)
if ttl < 0 then
	redis.call('PEXPIRE', key, window)
	ttl = window
end

local count = tonumber(current)
if count >= limit then
	return {0, count, ttl}
end

count = redis.call('INCR', key)
return {1, count, ttl}
`)

// RedisStorage keeps the counters in Redis so several instances share them
type RedisStorage struct {
	client redis.Cmdable
	logger domain.Logger
	now    func() time.Time
}

// NewRedisStorage connects to Redis and verifies the connection
func NewRedisStorage(host, port, password string, db int, logger domain.Logger) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,

		PoolSize:     20,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger != nil {
		logger.Info("Redis connection established", map[string]interface{}{
			"host": host,
			"port": port,
			"db":   db,
		})
	}

	return NewRedisStorageWithClient(rdb, logger), nil
}

// NewRedisStorageWithClient wraps an existing client
func NewRedisStorageWithClient(client redis.Cmdable, logger domain.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Hit runs the fixed-window script for key
func (r *RedisStorage) Hit(ctx context.Context, key string, limit int, window time.Duration) (*domain.RateLimitResult, error) {
	start := time.Now()

	raw, err := fixedWindowScript.Run(ctx, r.client, []string{key}, limit, window.Milliseconds()).Result()
	if err != nil {
		r.logStorageOperation("HIT", key, start, err)
		return nil, fmt.Errorf("failed to run rate limit script for key %s: %w", key, err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		err := fmt.Errorf("invalid script result for key %s", key)
		r.logStorageOperation("HIT", key, start, err)
		return nil, err
	}

	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	ttl, _ := values[2].(int64)

	result := &domain.RateLimitResult{
		Allowed: allowed == 1,
		Limit:   limit,
		ResetAt: r.now().Add(time.Duration(ttl) * time.Millisecond),
	}
	if result.Allowed {
		result.Remaining = limit - int(count)
	}

	r.logStorageOperation("HIT", key, start, nil)
	return result, nil
}

// Get reads the counter and its remaining lifetime
func (r *RedisStorage) Get(ctx context.Context, key string) (*domain.RateLimitRecord, error) {
	start := time.Now()

	count, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		r.logStorageOperation("GET", key, start, nil)
		return nil, nil
	}
	if err != nil {
		r.logStorageOperation("GET", key, start, err)
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		r.logStorageOperation("GET", key, start, err)
		return nil, fmt.Errorf("failed to get ttl for key %s: %w", key, err)
	}

	r.logStorageOperation("GET", key, start, nil)
	return &domain.RateLimitRecord{
		Key:           key,
		Count:         count,
		WindowResetAt: r.now().Add(ttl),
	}, nil
}

// Reset deletes the counter for key
func (r *RedisStorage) Reset(ctx context.Context, key string) error {
	start := time.Now()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logStorageOperation("RESET", key, start, err)
		return fmt.Errorf("failed to reset key %s: %w", key, err)
	}

	r.logStorageOperation("RESET", key, start, nil)
	return nil
}

// Sweep is a no-op: every counter is written with a PX expiry
func (r *RedisStorage) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

// Health pings the server
func (r *RedisStorage) Health(ctx context.Context) error {
	start := time.Now()

	if err := r.client.Ping(ctx).Err(); err != nil {
		r.logStorageOperation("HEALTH", "ping", start, err)
		return fmt.Errorf("redis health check failed: %w", err)
	}

	r.logStorageOperation("HEALTH", "ping", start, nil)
	return nil
}

// Close closes the underlying client when this store owns it
func (r *RedisStorage) Close() error {
	client, ok := r.client.(*redis.Client)
	if !ok {
		return nil
	}
	if err := client.Close(); err != nil {
		if r.logger != nil {
			r.logger.Error("Failed to close Redis connection", err, nil)
		}
		return err
	}
	if r.logger != nil {
		r.logger.Info("Redis connection closed", nil)
	}
	return nil
}

func (r *RedisStorage) logStorageOperation(operation, key string, start time.Time, err error) {
	logStorageEvent(r.logger, operation, key, start, err)
}
