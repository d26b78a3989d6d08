package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is an optional Redis-backed response cache for listing queries.
// A nil *Cache is valid and disables caching.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects a cache client. Returns nil when addr is empty so callers can
// run without Redis.
func New(addr, password string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ttl: ttl,
	}
}

// Key builds a deterministic cache key from the prefix and params: the
// params are sorted, joined and hashed so equivalent filters share an entry.
func Key(prefix string, params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	sum := md5.Sum([]byte(strings.Join(pairs, "&")))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Get loads a cached value into dest. Returns false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops every entry under prefix. Called after any property
// mutation so stale pages are never served.
func (c *Cache) Invalidate(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}
	keys, err := c.rdb.Keys(ctx, prefix+":*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
