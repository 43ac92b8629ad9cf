package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryCache implements Cache using in-process storage
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*cacheItem
	now  func() time.Time
	done chan struct{}
	once sync.Once
}

type cacheItem struct {
	value      []byte
	expiration time.Time // zero means no expiry
}

func (i *cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries every interval
func NewMemoryCache(interval time.Duration) *MemoryCache {
	mc := &MemoryCache{
		data: make(map[string]*cacheItem),
		now:  time.Now,
		done: make(chan struct{}),
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go mc.cleanup(interval)
	return mc
}

// Get retrieves a value from cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, exists := m.data[key]
	if !exists || item.expired(m.now()) {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value in cache; ttl <= 0 keeps it until deleted
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := &cacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = m.now().Add(ttl)
	}
	m.data[key] = item
	return nil
}

// Delete removes a value from cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Exists checks if a live key exists
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, exists := m.data[key]
	return exists && !item.expired(m.now()), nil
}

// Clear removes all keys matching a glob pattern, the same syntax Redis SCAN accepts
func (m *MemoryCache) Clear(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included until swept
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// cleanup periodically removes expired items
func (m *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryCache) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, item := range m.data {
		if item.expired(now) {
			delete(m.data, key)
		}
	}
}

// Close stops the sweeper
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
