// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache keyed by public
// route path. A cached route skips the content queries and template
// execution entirely until publishing invalidates it.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey. Errors are logged
// and treated as misses; the cache never fails a request.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// PathKey returns the Valkey key for a route path.
func PathKey(path string) string {
	if path == "" {
		path = "/"
	}
	return pageKeyPrefix + path
}

// Get retrieves cached HTML for a route path.
func (pc *PageCache) Get(ctx context.Context, path string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, PathKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "path", path, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "path", path)
	return val, true
}

// Set stores rendered HTML for a route path with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, path string, html []byte) {
	if err := pc.client.Set(ctx, PathKey(path), html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "path", path, "error", err)
	}
}

// InvalidatePage removes a single route from the cache.
func (pc *PageCache) InvalidatePage(ctx context.Context, path string) {
	if err := pc.client.Del(ctx, PathKey(path)).Err(); err != nil {
		slog.Warn("page cache invalidate error", "path", path, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "path", path)
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}
