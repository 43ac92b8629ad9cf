// Package cache stores resolved patient lookups between requests
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
	Close() error
}

// KeyPrefix namespaces every key written by img2pacs
const KeyPrefix = "img2pacs:"

// PatientKey generates the cache key for a patient lookup against one archive
func PatientKey(archive, patientID string) string {
	return KeyPrefix + "patient:" + strings.ToLower(archive) + ":" + patientID
}

// Noop never stores anything; every Get is a miss
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Noop) Delete(context.Context, string) error {
	return nil
}

func (Noop) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (Noop) Clear(context.Context, string) error {
	return nil
}

func (Noop) Close() error {
	return nil
}

var (
	_ Cache = Noop{}
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
