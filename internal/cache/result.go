// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// result.go provides a Redis-backed cache for listing and detail
// responses. When a listing page is computed from the database, the
// serialized result is stored so subsequent requests with the same
// signature skip the query entirely until the TTL elapses.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/metrics"
	"inkwell/internal/models"
)

const (
	// listKeyPrefix is the Redis key prefix for cached listing pages.
	listKeyPrefix = "blogs:list:"

	// detailKeyPrefix is the Redis key prefix for cached slug lookups.
	detailKeyPrefix = "blogs:slug:"

	// DefaultTTL is how long a cached response stays fresh.
	DefaultTTL = 5 * time.Minute
)

// Signature identifies a listing query: every parameter that affects the
// result set is part of the key. A struct key rather than ad-hoc string
// concatenation, so a new query parameter cannot be silently omitted.
type Signature struct {
	Tag      string
	Topic    string
	Query    string
	Page     int
	PageSize int
}

// Key returns the canonical Redis key for this signature.
func (s Signature) Key() string {
	return fmt.Sprintf("%stag=%s:topic=%s:q=%s:p=%d:s=%d",
		listKeyPrefix, s.Tag, s.Topic, s.Query, s.Page, s.PageSize)
}

// ResultCache manages TTL-bounded response caching in Redis.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a result cache backed by the given Redis client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// GetPage retrieves a cached listing page. Returns false on miss or on
// any cache error; the caller falls through to the database.
func (rc *ResultCache) GetPage(ctx context.Context, sig Signature) (*models.BlogPage, bool) {
	val, err := rc.client.Get(ctx, sig.Key()).Bytes()
	if err == redis.Nil {
		metrics.CacheMiss("list")
		return nil, false
	}
	if err != nil {
		slog.Warn("result cache get error", "key", sig.Key(), "error", err)
		metrics.CacheMiss("list")
		return nil, false
	}

	var page models.BlogPage
	if err := json.Unmarshal(val, &page); err != nil {
		slog.Warn("result cache decode error", "key", sig.Key(), "error", err)
		metrics.CacheMiss("list")
		return nil, false
	}
	metrics.CacheHit("list")
	slog.Debug("result cache hit", "key", sig.Key())
	return &page, true
}

// SetPage stores a listing page under its signature with the configured TTL.
func (rc *ResultCache) SetPage(ctx context.Context, sig Signature, page *models.BlogPage) {
	data, err := json.Marshal(page)
	if err != nil {
		slog.Warn("result cache encode error", "key", sig.Key(), "error", err)
		return
	}
	if err := rc.client.Set(ctx, sig.Key(), data, rc.ttl).Err(); err != nil {
		slog.Warn("result cache set error", "key", sig.Key(), "error", err)
	}
}

// GetDetail retrieves a cached blog by slug. Returns false on miss.
func (rc *ResultCache) GetDetail(ctx context.Context, slug string) (*models.Blog, bool) {
	val, err := rc.client.Get(ctx, detailKeyPrefix+slug).Bytes()
	if err == redis.Nil {
		metrics.CacheMiss("detail")
		return nil, false
	}
	if err != nil {
		slog.Warn("result cache get error", "slug", slug, "error", err)
		metrics.CacheMiss("detail")
		return nil, false
	}

	var blog models.Blog
	if err := json.Unmarshal(val, &blog); err != nil {
		slog.Warn("result cache decode error", "slug", slug, "error", err)
		metrics.CacheMiss("detail")
		return nil, false
	}
	metrics.CacheHit("detail")
	return &blog, true
}

// SetDetail stores a blog under its slug with the configured TTL.
func (rc *ResultCache) SetDetail(ctx context.Context, slug string, blog *models.Blog) {
	data, err := json.Marshal(blog)
	if err != nil {
		slog.Warn("result cache encode error", "slug", slug, "error", err)
		return
	}
	if err := rc.client.Set(ctx, detailKeyPrefix+slug, data, rc.ttl).Err(); err != nil {
		slog.Warn("result cache set error", "slug", slug, "error", err)
	}
}

// InvalidateDetail removes a single cached slug lookup.
func (rc *ResultCache) InvalidateDetail(ctx context.Context, slug string) {
	if err := rc.client.Del(ctx, detailKeyPrefix+slug).Err(); err != nil {
		slog.Warn("result cache invalidate error", "slug", slug, "error", err)
	}
}

// InvalidateLists removes all cached listing pages by scanning for the
// prefix. Called after any create or update, since any page could be
// affected.
func (rc *ResultCache) InvalidateLists(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, listKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("result cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("result cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("listing cache cleared", "deleted", deleted)
	}
}
