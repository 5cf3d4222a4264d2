package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CacheStore is a key-value store with per-entry TTL. Reads that fail are
// reported as misses; writes return their error so callers can log it.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache stores values as plain Redis strings with EX.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU used when no Redis is configured.
type MemoryCache struct {
	items *lru.Cache[string, memoryEntry]
	now   func() time.Time
	mu    sync.Mutex
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = 1024
	}
	items, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{items: items, now: time.Now}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	if !ent.expiresAt.IsZero() && c.now().After(ent.expiresAt) {
		c.items.Remove(key)
		return nil, false
	}
	out := make([]byte, len(ent.value))
	copy(out, ent.value)
	return out, true
}

// Set stores a copy of value. A ttl <= 0 never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		ent.expiresAt = c.now().Add(ttl)
	}
	c.items.Add(key, ent)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Remove(key)
	return nil
}

// normalizeKey lowercases s and collapses every run of non letters/digits
// into a single space.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// GuideCacheKey is the cache key for a (city, neighborhood) pair.
func GuideCacheKey(city, neighborhood string) string {
	return "guide:" + normalizeKey(city) + "|" + normalizeKey(neighborhood)
}
