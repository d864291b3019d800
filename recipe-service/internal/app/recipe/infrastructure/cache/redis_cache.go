package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"recipehub/pkg/metrics"
	"recipehub/recipe-service/internal/app/recipe/entity"
)

const (
	filterOptionsKey = "recipes:filters"
	serviceName      = "recipe-service"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
		PoolSize:    10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFrom wraps an existing client
func NewRedisClientFrom(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// Client exposes the underlying connection for the rate limiter
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	data, err := r.client.Get(ctx, filterOptionsKey).Bytes()
	timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, filterOptionsKey)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get filter options from cache: %w", err)
	}

	var opts entity.FilterOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter options: %w", err)
	}

	metrics.RecordCacheHit(serviceName, filterOptionsKey)
	return &opts, nil
}

func (r *RedisClient) SetFilterOptions(ctx context.Context, opts *entity.FilterOptions, ttl time.Duration) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to marshal filter options: %w", err)
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()
	if err := r.client.Set(ctx, filterOptionsKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set filter options in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) InvalidateFilterOptions(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()
	if err := r.client.Del(ctx, filterOptionsKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete filter options from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
