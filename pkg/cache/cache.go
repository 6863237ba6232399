// Package cache holds the JSON key/value cache used for hot read paths.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by GetJSON when the key is absent.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NopCache never stores anything; every read is a miss.
type NopCache struct{}

func (NopCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return ErrMiss
}

func (NopCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (NopCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}
