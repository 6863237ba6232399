package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	gobreaker "github.com/sony/gobreaker/v2"
)

type RedisClient struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
}

type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
	OnStateChange    func(name string, from, to gobreaker.State)
}

func NewRedisClient(addr, password string, db, poolSize, minIdleConns int) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	return NewRedisClientWith(client, BreakerSettings{})
}

// NewRedisClientWith wraps an existing client. Zero settings trip the breaker
// after 5 consecutive failures and retry after 30s.
func NewRedisClientWith(client *redis.Client, bs BreakerSettings) *RedisClient {
	if bs.FailureThreshold == 0 {
		bs.FailureThreshold = 5
	}
	if bs.OpenTimeout == 0 {
		bs.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.FailureThreshold
		},
		OnStateChange: bs.OnStateChange,
		// a miss is an answer, not a failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	}

	return &RedisClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	_, err = r.breaker.Execute(func() (interface{}, error) {
		return nil, r.client.Set(ctx, key, data, expiration).Err()
	})
	return err
}

// GetJSON decodes the value at key into dest. A missing key returns ErrMiss.
func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.Get(ctx, key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(result.([]byte), dest)
}

func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.client.Del(ctx, keys...).Err()
	})
	return err
}

func (r *RedisClient) BreakerState() string {
	return r.breaker.State().String()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
